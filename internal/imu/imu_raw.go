package imu

// Raw represents a single raw accelerometer sample.
type Raw struct {
	Ax int16 `json:"ax"`
	Ay int16 `json:"ay"`
	Az int16 `json:"az"`
}
