package thermal

import "fmt"

// Locale selects the language of status messages.
type Locale string

const (
	LocalePL Locale = "pl"
	LocaleEN Locale = "en"
)

type phrasebook struct {
	awaiting      string
	noLiquid      string
	heating       string // %d target
	testing       string // %d target
	testFinished  string // %d elapsed ms
	noLiquidAfter string
}

var phrasebooks = map[Locale]phrasebook{
	LocalePL: {
		awaiting:      "Oczekiwanie na polecenie",
		noLiquid:      "Brak wody w czajniku!",
		heating:       "Podgrzewanie do %d stopni",
		testing:       "Test w toku, podgrzewanie do %d stopni",
		testFinished:  "Test zakończony: %dms",
		noLiquidAfter: " Brak wody w czajniku!",
	},
	LocaleEN: {
		awaiting:      "Awaiting command",
		noLiquid:      "No water in the kettle!",
		heating:       "Heating to %d degrees",
		testing:       "Test in progress, heating to %d degrees",
		testFinished:  "Test finished: %dms",
		noLiquidAfter: " No water in the kettle!",
	},
}

// KnownLocale reports whether Describe has messages for l.
func KnownLocale(l Locale) bool {
	_, ok := phrasebooks[l]
	return ok
}

// Describe renders the status line shown to users. Unknown locales fall
// back to Polish.
func Describe(s State, l Locale) string {
	pb, ok := phrasebooks[l]
	if !ok {
		pb = phrasebooks[LocalePL]
	}

	switch {
	case s.Mode == ModeTesting:
		return fmt.Sprintf(pb.testing, s.Target.Degrees)
	case s.TestFinished:
		msg := fmt.Sprintf(pb.testFinished, s.TestElapsed.Milliseconds())
		if s.NoLiquid {
			msg += pb.noLiquidAfter
		}
		return msg
	case s.NoLiquid:
		return pb.noLiquid
	case s.Target.Valid:
		return fmt.Sprintf(pb.heating, s.Target.Degrees)
	default:
		return pb.awaiting
	}
}
