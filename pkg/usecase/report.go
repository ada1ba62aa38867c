package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"

	"github.com/fusa-lab/talos/pkg/domain/interfaces"
	"github.com/fusa-lab/talos/pkg/domain/model"
	"github.com/fusa-lab/talos/pkg/service/report"
	"github.com/fusa-lab/talos/pkg/utils/safe"
)

// ReportUseCase renders and exports HARA deliverables of a session
type ReportUseCase struct {
	repo interfaces.Repository
}

// NewReportUseCase creates a new ReportUseCase instance
func NewReportUseCase(repo interfaces.Repository) *ReportUseCase {
	return &ReportUseCase{repo: repo}
}

// Render returns the full markdown report of the session
func (uc *ReportUseCase) Render(ctx context.Context, id model.SessionID) (string, error) {
	sess, err := getSession(ctx, uc.repo, id)
	if err != nil {
		return "", err
	}
	return report.Render(sess), nil
}

// Table returns the markdown HARA table of the session
func (uc *ReportUseCase) Table(ctx context.Context, id model.SessionID) (string, error) {
	sess, err := getSession(ctx, uc.repo, id)
	if err != nil {
		return "", err
	}
	return report.Table(sess), nil
}

// Export renders the report and writes it to the destination, either a
// local directory or a gs:// bucket prefix. It returns the location of the
// written file.
func (uc *ReportUseCase) Export(ctx context.Context, id model.SessionID, dest string) (string, error) {
	sess, err := getSession(ctx, uc.repo, id)
	if err != nil {
		return "", err
	}

	exporter, err := report.NewExporter(ctx, dest)
	if err != nil {
		return "", goerr.Wrap(err, "failed to open report destination", goerr.V("dest", dest))
	}
	defer safe.Close(ctx, exporter)

	loc, err := exporter.Export(ctx, report.Filename(sess), []byte(report.Render(sess)))
	if err != nil {
		return "", goerr.Wrap(err, "failed to export report",
			goerr.V(SessionIDKey, id), goerr.V("dest", dest))
	}
	return loc, nil
}
