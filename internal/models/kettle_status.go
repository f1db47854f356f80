package models

import "time"

// KettleStatus is the JSON view of the controller snapshot.
type KettleStatus struct {
	Mode          string    `json:"mode"` // IDLE | HEATING | TESTING
	CurrentTempC  *int      `json:"current_temp_c"`
	TargetTempC   *int      `json:"target_temp_c"`
	HeaterOn      bool      `json:"heater_on"`
	NoLiquid      bool      `json:"no_liquid"`
	SensorFault   bool      `json:"sensor_fault"`
	StalledMS     int64     `json:"stalled_ms"`
	TestFinished  bool      `json:"test_finished"`
	TestElapsedMS int64     `json:"test_elapsed_ms,omitempty"`
	Message       string    `json:"message"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// TargetRequest is the body of the target and test endpoints.
type TargetRequest struct {
	TargetTempC int `json:"target_temp_c" binding:"required" example:"90"`
}
