package insights

import (
	"context"
	"path"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	usecaseErrors "github.com/johnquangdev/call-insights/internal/usecase/errors"
)

const reportLinkExpiry = 15 * time.Minute

// ReportArchive lists archived objects and signs download links for them.
// The MinIO archiver implements it next to Archiver.
type ReportArchive interface {
	ListFiles(ctx context.Context, prefix string) ([]string, error)
	GetFileURL(ctx context.Context, objectName string, expiry time.Duration) (string, error)
}

// ArchivedReport is one archived processing run of a call
type ArchivedReport struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

// ArchivedReports lists the archived insight reports of a call, newest first
func (s *Service) ArchivedReports(ctx context.Context, callID string, orgID *uuid.UUID) ([]ArchivedReport, error) {
	browser, ok := s.archiver.(ReportArchive)
	if !ok {
		return nil, usecaseErrors.ErrArchiveDisabled
	}

	callLog, err := s.callLogs.FindByCallID(ctx, callID)
	if err != nil {
		return nil, err
	}
	if !callLog.BelongsTo(orgID) {
		return nil, usecaseErrors.ErrForbidden
	}

	keys, err := browser.ListFiles(ctx, path.Join("insights", callLog.CallID)+"/")
	if err != nil {
		return nil, err
	}
	sort.Sort(sort.Reverse(sort.StringSlice(keys)))

	reports := make([]ArchivedReport, 0, len(keys))
	for _, key := range keys {
		url, err := browser.GetFileURL(ctx, key, reportLinkExpiry)
		if err != nil {
			s.logger.Warn("⚠️ Failed to sign report link", zap.String("key", key), zap.Error(err))
			continue
		}
		reports = append(reports, ArchivedReport{Key: key, URL: url})
	}
	return reports, nil
}
