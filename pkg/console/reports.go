package console

import (
	"context"
	"errors"

	"github.com/goliatone/go-micomedor/pkg/console/prompt"
	"github.com/goliatone/go-micomedor/pkg/report"
)

// Report menu entries.
const (
	ReportDaily  = "Reporte diario"
	ReportWeekly = "Reporte semanal"
)

func (c *Console) reportsMenu(ctx context.Context) error {
	builder := report.NewBuilder(c.client, report.WithClock(c.now), report.WithLogger(c.logger))
	options := []string{ReportDaily, ReportWeekly, ActionBack}
	for {
		idx, err := c.driver.Select(ctx, prompt.SelectConfig{Message: MenuReports, Options: options})
		if errors.Is(err, prompt.ErrAborted) {
			return nil
		}
		if err != nil {
			return err
		}

		var text string
		switch options[idx] {
		case ReportDaily:
			daily, err := builder.Daily(ctx)
			if err != nil {
				return err
			}
			text, err = c.reports.Daily(daily)
			if err != nil {
				return err
			}
		case ReportWeekly:
			weekly, err := builder.Weekly(ctx)
			if err != nil {
				return err
			}
			text, err = c.reports.Weekly(weekly)
			if err != nil {
				return err
			}
		default:
			return nil
		}
		c.info(ctx, text)
	}
}
