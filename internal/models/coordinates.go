package models

import "fmt"

type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (c Coordinates) String() string {
	return fmt.Sprintf("lat=%.6f lon=%.6f", c.Latitude, c.Longitude)
}
