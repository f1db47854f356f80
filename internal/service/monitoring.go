package service

import (
	"context"
	"fmt"

	"smart_kettle/internal/models"
	"smart_kettle/internal/repository"
	"smart_kettle/internal/thermal"
)

type MonitoringService struct {
	stateRepo repository.StateRepo
	locale    thermal.Locale
}

func NewMonitoringService(stateRepo repository.StateRepo, locale thermal.Locale) *MonitoringService {
	if !thermal.KnownLocale(locale) {
		locale = thermal.LocalePL
	}
	return &MonitoringService{stateRepo: stateRepo, locale: locale}
}

// GetStatus returns the latest snapshot. Before the first tick this is the
// idle state with no reading.
func (s *MonitoringService) GetStatus(ctx context.Context) (models.KettleStatus, error) {
	st, err := s.stateRepo.Load(ctx)
	if err != nil {
		return models.KettleStatus{}, fmt.Errorf("load state: %w", err)
	}
	return NewKettleStatus(st, s.locale), nil
}

// NewKettleStatus converts a controller snapshot into its JSON view.
func NewKettleStatus(st thermal.State, locale thermal.Locale) models.KettleStatus {
	out := models.KettleStatus{
		Mode:         st.Mode.String(),
		CurrentTempC: degreesPtr(st.LastReading),
		TargetTempC:  degreesPtr(st.Target),
		HeaterOn:     st.HeaterOn,
		NoLiquid:     st.NoLiquid,
		SensorFault:  st.SensorFault,
		StalledMS:    st.UnchangedFor.Milliseconds(),
		TestFinished: st.TestFinished,
		Message:      thermal.Describe(st, locale),
		UpdatedAt:    toUTC(st.UpdatedAt),
	}
	if st.TestFinished {
		out.TestElapsedMS = st.TestElapsed.Milliseconds()
	}
	return out
}

func degreesPtr(d thermal.NullDegrees) *int {
	if !d.Valid {
		return nil
	}
	v := d.Degrees
	return &v
}
