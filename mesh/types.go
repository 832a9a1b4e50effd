package mesh

import "time"

// Point is an integer 3D coordinate. It is a comparable value and can be
// used directly as a map key.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
	Z int `json:"z"`
}

// Rotation is a 3x3 integer matrix. Only the 24 proper axis-aligned
// rotations in Rotations are meaningful here.
type Rotation [3][3]int

// Transform maps a point from one frame into another: p' = R*p + T
type Transform struct {
	Rotation    Rotation `json:"rotation"`
	Translation Point    `json:"translation"`
}

// Scanner is a single scanner's report: its index and the beacons it
// sees in its own local frame.
type Scanner struct {
	ID      int     `json:"id"`
	Beacons []Point `json:"beacons"`
}

// ScannerPair is an unordered pair of scanner indices with I < J.
type ScannerPair struct {
	I      int `json:"i"`
	J      int `json:"j"`
	Shared int `json:"shared"` // shared fingerprint distances
}

// Edge is a solved relative transform. Transform maps points from the
// To scanner's frame into the From scanner's frame.
type Edge struct {
	From      int       `json:"from"`
	To        int       `json:"to"`
	Transform Transform `json:"transform"`
	Matches   int       `json:"matches"`
}

// Pose is a scanner's absolute transform relative to the root scanner.
// Translation is the scanner's position in the root frame.
type Pose struct {
	ScannerID int       `json:"scannerId"`
	Transform Transform `json:"transform"`
}

// IdentityTransform returns the transform that leaves every point unchanged.
func IdentityTransform() Transform {
	return Transform{Rotation: IdentityRotation}
}

// AlignmentConfig controls the alignment pipeline
type AlignmentConfig struct {
	MinOverlap int `yaml:"minOverlap" json:"minOverlap"` // beacons two scanners must share
	Root       int `yaml:"root" json:"root"`             // scanner whose frame is global
	Workers    int `yaml:"workers" json:"workers"`       // 0 = GOMAXPROCS

	// CacheMaxAge expires pose caches older than this; 0 keeps them forever
	CacheMaxAge time.Duration `yaml:"cacheMaxAge,omitempty" json:"cacheMaxAge,omitempty"`
}

// MQTTConfig holds MQTT connection settings
type MQTTConfig struct {
	Broker        string `yaml:"broker" json:"broker"`
	ClientID      string `yaml:"clientId" json:"clientId"`
	InputTopic    string `yaml:"inputTopic" json:"inputTopic"`
	PublishPrefix string `yaml:"publishPrefix" json:"publishPrefix"`
	Username      string `yaml:"username,omitempty" json:"username,omitempty"`
	Password      string `yaml:"password,omitempty" json:"password,omitempty"`
}

// RenderConfig holds map rendering settings
type RenderConfig struct {
	Scale       float64 `yaml:"scale" json:"scale"`             // output units per beacon unit
	Padding     float64 `yaml:"padding" json:"padding"`         // padding in beacon units
	GridSpacing float64 `yaml:"gridSpacing" json:"gridSpacing"` // 0 disables the grid
	Resolution  float64 `yaml:"resolution" json:"resolution"`   // DPI for vector PNG output
}

// Config represents the full configuration file
type Config struct {
	Alignment AlignmentConfig `yaml:"alignment" json:"alignment"`
	MQTT      MQTTConfig      `yaml:"mqtt" json:"mqtt"`
	Render    RenderConfig    `yaml:"render" json:"render"`
}
