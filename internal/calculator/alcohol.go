package calculator

import (
	"time"

	"github.com/iwvelando/finance-calculators/internal/config"
	"github.com/iwvelando/finance-calculators/pkg/bac"
	"github.com/iwvelando/finance-calculators/pkg/mathutil"
)

func (c *Calculator) alcohol(a config.Alcohol, now time.Time, result *Result) error {
	session, err := a.Session(now)
	if err != nil {
		return err
	}
	assessment, err := bac.Assess(session, now)
	if err != nil {
		return err
	}

	result.add("currentBAC", "Current BAC", assessment.Level, UnitBAC)
	result.add("peakBAC", "Peak BAC if absorbed at once", assessment.Peak, UnitBAC)
	result.add("hoursUntilSober", "Hours until sober", mathutil.RoundTo(assessment.TimeUntilSober.Hours(), 2), UnitHours)
	result.Curve = assessment.Curve

	if assessment.OverLimit {
		result.note("Over the %.2f legal driving limit", bac.LegalLimit)
	}
	if assessment.TimeUntilSober > 0 {
		result.note("Sober at about %s", assessment.SoberAt.Format("15:04 on Jan 2"))
	} else {
		result.note("No measurable alcohol remains")
	}
	return nil
}
