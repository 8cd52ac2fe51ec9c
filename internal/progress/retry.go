package progress

import (
	"context"
	"time"

	"github.com/llehouerou/jellywaves/internal/jellyfin"
	"github.com/llehouerou/jellywaves/internal/state"
)

const (
	// RetryInterval is how often the outbox should be flushed.
	RetryInterval = 5 * time.Minute

	maxAttempts = 10
	maxAge      = 7 * 24 * time.Hour
)

// RetryResult counts the outcome of one outbox flush.
type RetryResult struct {
	Succeeded int
	Failed    int
}

// RetryPending resends queued reports oldest first. Reports that failed too
// often are left in place until they age out.
func RetryPending(ctx context.Context, rep Reporter, outbox state.ReportOutbox) (RetryResult, error) {
	var res RetryResult

	if err := outbox.DeleteOldPendingReports(maxAge); err != nil {
		return res, err
	}
	pending, err := outbox.GetPendingReports()
	if err != nil {
		return res, err
	}

	for i := range pending {
		p := &pending[i]
		if p.Attempts >= maxAttempts {
			continue
		}
		if err := ctx.Err(); err != nil {
			return res, err
		}

		kind, ok := parseKind(p.Kind)
		if !ok {
			_ = outbox.DeletePendingReport(p.ID)
			continue
		}
		r := jellyfin.PlaybackReport{
			ItemID:              p.ItemID,
			MediaSourceID:       p.MediaSourceID,
			PlaySessionID:       p.PlaySessionID,
			PositionTicks:       p.PositionTicks,
			IsPaused:            p.IsPaused,
			AudioStreamIndex:    p.AudioStreamIndex,
			SubtitleStreamIndex: p.SubtitleStreamIndex,
		}

		reqCtx, cancel := context.WithTimeout(ctx, requestTimeout)
		err := send(reqCtx, rep, kind, r)
		cancel()
		if err != nil {
			res.Failed++
			_ = outbox.UpdatePendingReportAttempt(p.ID, err.Error())
			continue
		}
		res.Succeeded++
		_ = outbox.DeletePendingReport(p.ID)
	}

	return res, nil
}

func parseKind(s string) (reportKind, bool) {
	switch s {
	case state.ReportStart:
		return kindStart, true
	case state.ReportStop:
		return kindStop, true
	case state.ReportPlayed:
		return kindPlayed, true
	default:
		return 0, false
	}
}
