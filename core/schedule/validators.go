package schedule

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/hocdan/guitarschool/core"
)

var (
	hhmmTag  = "hhmm"
	hhmmText = "{0} must be a time of day formatted as HH:mm"

	endAfterStartTag  = "endafterstart"
	endAfterStartText = "end_time must be after start_time"

	oneSessionPerDayTag  = "onesessionperday"
	oneSessionPerDayText = "a class can only have one session per day"
)

// InitValidators registers the schedule validators & their translations.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(hhmmTag, hhmmValidation)
	core.RegisterCustomTranslation(validate, translator, hhmmTag, hhmmText)

	validate.RegisterStructValidation(sessionStructValidation, Session{})
	core.RegisterCustomTranslation(validate, translator, endAfterStartTag, endAfterStartText)

	validate.RegisterStructValidation(classStructValidation, NewClass{}, UpdateClass{})
	core.RegisterCustomTranslation(validate, translator, oneSessionPerDayTag, oneSessionPerDayText)
}

// ValidateSession is the one check every session goes through before joining a class:
// day in [0, 6], HH:mm times and end strictly after start.
func ValidateSession(validate *validator.Validate, s Session) error {
	return validate.Struct(s)
}

// Custom Validators

// hhmmValidation only allows 24-hour "HH:mm" times.
func hhmmValidation(fl validator.FieldLevel) bool {
	return IsTimeOfDay(fl.Field().String())
}

// sessionStructValidation requires a decoded day and checks the end of the session comes after its start.
// Malformed times are already reported by the field level `hhmm` tag.
func sessionStructValidation(sl validator.StructLevel) {
	s, ok := sl.Current().Interface().(Session)
	if !ok {
		return
	}
	if s.dayMissing {
		sl.ReportError(s.DayOfWeek, "day_of_week", "DayOfWeek", "required", "")
	}
	start, end, err := s.Window()
	if err != nil {
		return
	}
	if end <= start {
		sl.ReportError(s.EndTime, "end_time", "EndTime", endAfterStartTag, "")
	}
}

// classStructValidation does struct level validation on NewClass and UpdateClass structs.
func classStructValidation(sl validator.StructLevel) {
	switch c := sl.Current().Interface().(type) {
	case NewClass:
		validateOneSessionPerDay(c.Sessions, sl)
	case UpdateClass:
		validateOneSessionPerDay(c.Sessions, sl)
	}
}

func validateOneSessionPerDay(sessions []Session, sl validator.StructLevel) {
	seen := make(map[int]bool, len(sessions))
	for _, s := range sessions {
		if seen[s.DayOfWeek] {
			sl.ReportError(sessions, "sessions", "Sessions", oneSessionPerDayTag, "")
			return
		}
		seen[s.DayOfWeek] = true
	}
}
