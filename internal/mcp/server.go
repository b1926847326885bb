package mcp

import (
	"context"
	"log/slog"
	"time"

	"github.com/jlchiang/tutorbase/internal/domain/billing"
	"github.com/jlchiang/tutorbase/internal/domain/session"
	"github.com/jlchiang/tutorbase/internal/domain/student"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// StudentService defines roster operations needed by MCP.
type StudentService interface {
	Add(ctx context.Context, req student.AddRequest) (*student.Student, error)
	List(ctx context.Context) ([]student.Student, error)
	Delete(ctx context.Context, id int64) error
}

// SessionService defines scheduling operations needed by MCP.
type SessionService interface {
	Schedule(ctx context.Context, req session.ScheduleRequest) (*session.Session, error)
	Edit(ctx context.Context, req session.EditRequest) (*session.Session, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]session.View, error)
	RepairCalendar(ctx context.Context, now time.Time) (int, error)
}

// BillingService defines billing operations needed by MCP.
type BillingService interface {
	RunBilling(ctx context.Context, mode billing.GroupingMode, now time.Time) (*billing.RunResult, error)
	MarkPaid(ctx context.Context, id int64) error
	List(ctx context.Context) ([]billing.Summary, error)
	Statement(ctx context.Context, id int64) (*billing.Statement, error)
	ExportCSV(ctx context.Context, id int64) ([]byte, string, error)
	Overview(ctx context.Context, now time.Time) (*billing.Overview, error)
	CheckTotals(ctx context.Context) ([]billing.Mismatch, error)
}

// Services contains all domain services needed by MCP.
type Services struct {
	Students StudentService
	Sessions SessionService
	Billing  BillingService
}

// Config contains server configuration.
type Config struct {
	Services        Services
	DefaultGrouping billing.GroupingMode
	Logger          *slog.Logger
}

const serverInstructions = `tutorbase manages a tutoring roster, schedule, and billing.
Typical flow: add_student, schedule_session as lessons happen, then
run_billing to turn completed lessons into invoices and mark_invoice_paid
when money arrives. get_overview shows the current financial position.`

// NewServer creates and configures an MCP server with all tools and
// middleware.
func NewServer(cfg Config) *sdkmcp.Server {
	server := sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    "tutorbase",
		Version: "0.1.0",
	}, &sdkmcp.ServerOptions{
		Instructions: serverInstructions,
		Logger:       cfg.Logger,
	})

	server.AddReceivingMiddleware(trafficLoggingMiddleware(cfg.Logger, "inbound"))
	server.AddSendingMiddleware(trafficLoggingMiddleware(cfg.Logger, "outbound"))

	registerTools(server, cfg.Services, cfg.DefaultGrouping)

	return server
}
