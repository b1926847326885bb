package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/jlchiang/tutorbase/internal/domain/billing"
	"github.com/jlchiang/tutorbase/internal/domain/session"
	"github.com/jlchiang/tutorbase/internal/domain/student"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// handler adapts the domain services to tool calls.
type handler struct {
	services        Services
	defaultGrouping billing.GroupingMode
}

func registerTools(server *sdkmcp.Server, services Services, defaultGrouping billing.GroupingMode) {
	h := &handler{services: services, defaultGrouping: defaultGrouping}

	// Roster
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "add_student",
		Description: "Add a student to the roster with a default hourly rate",
	}, h.addStudent)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "list_students",
		Description: "List the full student roster",
	}, h.listStudents)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "delete_student",
		Description: "Delete a student from the roster (their sessions and invoices are kept)",
	}, h.deleteStudent)

	// Scheduling
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "schedule_session",
		Description: "Schedule a tutoring session; sessions starting in the past are recorded as completed",
	}, h.scheduleSession)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "edit_session",
		Description: "Edit a session's student, times, or progress notes",
	}, h.editSession)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "delete_session",
		Description: "Delete a session and its mirrored calendar event",
	}, h.deleteSession)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "list_sessions",
		Description: "List all sessions with student names, newest first",
	}, h.listSessions)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "repair_calendar",
		Description: "Create calendar events for future sessions that are missing one",
	}, h.repairCalendar)

	// Billing
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_overview",
		Description: "Get the billing overview: uninvoiced amount, pending session count, upcoming sessions",
	}, h.getOverview)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "run_billing",
		Description: "Reconcile session statuses and turn completed, uninvoiced sessions into invoices",
	}, h.runBilling)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "list_invoices",
		Description: "List all invoices with student names, newest first",
	}, h.listInvoices)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_invoice",
		Description: "Get an invoice statement with one line per session",
	}, h.getInvoice)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "mark_invoice_paid",
		Description: "Mark an invoice as paid; paid invoices are immutable",
	}, h.markInvoicePaid)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "export_invoice_csv",
		Description: "Export an invoice statement as CSV with a trailing total row",
	}, h.exportInvoiceCSV)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "check_invoice_totals",
		Description: "Recompute invoice totals from their sessions and report any drift",
	}, h.checkInvoiceTotals)
}

type AddStudentParams struct {
	Name          string `json:"name"`
	ParentContact string `json:"parent_contact,omitempty"`
	DefaultRate   int64  `json:"default_rate"`
	Color         string `json:"color,omitempty"`
}

func (h *handler) addStudent(ctx context.Context, req *sdkmcp.CallToolRequest, in AddStudentParams) (*sdkmcp.CallToolResult, *student.Student, error) {
	stu, err := h.services.Students.Add(ctx, student.AddRequest{
		Name:          in.Name,
		ParentContact: in.ParentContact,
		DefaultRate:   in.DefaultRate,
		Color:         in.Color,
	})
	if err != nil {
		return nil, nil, mapError(err)
	}
	return nil, stu, nil
}

type ListStudentsParams struct{}

type ListStudentsResult struct {
	Students []student.Student `json:"students"`
}

func (h *handler) listStudents(ctx context.Context, req *sdkmcp.CallToolRequest, in ListStudentsParams) (*sdkmcp.CallToolResult, ListStudentsResult, error) {
	students, err := h.services.Students.List(ctx)
	if err != nil {
		return nil, ListStudentsResult{}, mapError(err)
	}
	return nil, ListStudentsResult{Students: students}, nil
}

type DeleteStudentParams struct {
	ID int64 `json:"id"`
}

type DeletedResult struct {
	Deleted bool `json:"deleted"`
}

func (h *handler) deleteStudent(ctx context.Context, req *sdkmcp.CallToolRequest, in DeleteStudentParams) (*sdkmcp.CallToolResult, DeletedResult, error) {
	if err := h.services.Students.Delete(ctx, in.ID); err != nil {
		return nil, DeletedResult{}, mapError(err)
	}
	return nil, DeletedResult{Deleted: true}, nil
}

type ScheduleSessionParams struct {
	StudentID     int64   `json:"student_id"`
	StartTime     string  `json:"start_time"`
	EndTime       string  `json:"end_time,omitempty"`
	DurationHours float64 `json:"duration_hours,omitempty"`
	Progress      string  `json:"progress,omitempty"`
}

func (h *handler) scheduleSession(ctx context.Context, req *sdkmcp.CallToolRequest, in ScheduleSessionParams) (*sdkmcp.CallToolResult, *session.Session, error) {
	start, end, err := parseTimeRange(in.StartTime, in.EndTime, in.DurationHours)
	if err != nil {
		return nil, nil, err
	}
	sess, err := h.services.Sessions.Schedule(ctx, session.ScheduleRequest{
		StudentID: in.StudentID,
		Start:     start,
		End:       end,
		Progress:  in.Progress,
	})
	if err != nil {
		return nil, nil, mapError(err)
	}
	return nil, sess, nil
}

type EditSessionParams struct {
	ID            int64   `json:"id"`
	StudentID     int64   `json:"student_id,omitempty"`
	StartTime     string  `json:"start_time"`
	EndTime       string  `json:"end_time,omitempty"`
	DurationHours float64 `json:"duration_hours,omitempty"`
	Progress      string  `json:"progress,omitempty"`
}

func (h *handler) editSession(ctx context.Context, req *sdkmcp.CallToolRequest, in EditSessionParams) (*sdkmcp.CallToolResult, *session.Session, error) {
	start, end, err := parseTimeRange(in.StartTime, in.EndTime, in.DurationHours)
	if err != nil {
		return nil, nil, err
	}
	sess, err := h.services.Sessions.Edit(ctx, session.EditRequest{
		ID:        in.ID,
		StudentID: in.StudentID,
		Start:     start,
		End:       end,
		Progress:  in.Progress,
	})
	if err != nil {
		return nil, nil, mapError(err)
	}
	return nil, sess, nil
}

type DeleteSessionParams struct {
	ID int64 `json:"id"`
}

func (h *handler) deleteSession(ctx context.Context, req *sdkmcp.CallToolRequest, in DeleteSessionParams) (*sdkmcp.CallToolResult, DeletedResult, error) {
	if err := h.services.Sessions.Delete(ctx, in.ID); err != nil {
		return nil, DeletedResult{}, mapError(err)
	}
	return nil, DeletedResult{Deleted: true}, nil
}

type ListSessionsParams struct{}

type ListSessionsResult struct {
	Sessions []session.View `json:"sessions"`
}

func (h *handler) listSessions(ctx context.Context, req *sdkmcp.CallToolRequest, in ListSessionsParams) (*sdkmcp.CallToolResult, ListSessionsResult, error) {
	sessions, err := h.services.Sessions.List(ctx)
	if err != nil {
		return nil, ListSessionsResult{}, mapError(err)
	}
	return nil, ListSessionsResult{Sessions: sessions}, nil
}

type RepairCalendarParams struct{}

type RepairCalendarResult struct {
	Repaired int `json:"repaired"`
}

func (h *handler) repairCalendar(ctx context.Context, req *sdkmcp.CallToolRequest, in RepairCalendarParams) (*sdkmcp.CallToolResult, RepairCalendarResult, error) {
	repaired, err := h.services.Sessions.RepairCalendar(ctx, time.Now())
	if err != nil {
		return nil, RepairCalendarResult{}, mapError(err)
	}
	return nil, RepairCalendarResult{Repaired: repaired}, nil
}

type GetOverviewParams struct{}

func (h *handler) getOverview(ctx context.Context, req *sdkmcp.CallToolRequest, in GetOverviewParams) (*sdkmcp.CallToolResult, *billing.Overview, error) {
	overview, err := h.services.Billing.Overview(ctx, time.Now())
	if err != nil {
		return nil, nil, mapError(err)
	}
	return nil, overview, nil
}

type RunBillingParams struct {
	Grouping string `json:"grouping,omitempty"`
}

func (h *handler) runBilling(ctx context.Context, req *sdkmcp.CallToolRequest, in RunBillingParams) (*sdkmcp.CallToolResult, *billing.RunResult, error) {
	mode := h.defaultGrouping
	if in.Grouping != "" {
		var err error
		mode, err = billing.ParseGroupingMode(in.Grouping)
		if err != nil {
			return nil, nil, mapError(err)
		}
	}
	result, err := h.services.Billing.RunBilling(ctx, mode, time.Now())
	if err != nil {
		return nil, nil, mapError(err)
	}
	return nil, result, nil
}

type ListInvoicesParams struct{}

type ListInvoicesResult struct {
	Invoices []billing.Summary `json:"invoices"`
}

func (h *handler) listInvoices(ctx context.Context, req *sdkmcp.CallToolRequest, in ListInvoicesParams) (*sdkmcp.CallToolResult, ListInvoicesResult, error) {
	invoices, err := h.services.Billing.List(ctx)
	if err != nil {
		return nil, ListInvoicesResult{}, mapError(err)
	}
	return nil, ListInvoicesResult{Invoices: invoices}, nil
}

type GetInvoiceParams struct {
	ID int64 `json:"id"`
}

func (h *handler) getInvoice(ctx context.Context, req *sdkmcp.CallToolRequest, in GetInvoiceParams) (*sdkmcp.CallToolResult, *billing.Statement, error) {
	statement, err := h.services.Billing.Statement(ctx, in.ID)
	if err != nil {
		return nil, nil, mapError(err)
	}
	return nil, statement, nil
}

type MarkInvoicePaidParams struct {
	ID int64 `json:"id"`
}

type MarkInvoicePaidResult struct {
	Paid bool `json:"paid"`
}

func (h *handler) markInvoicePaid(ctx context.Context, req *sdkmcp.CallToolRequest, in MarkInvoicePaidParams) (*sdkmcp.CallToolResult, MarkInvoicePaidResult, error) {
	if err := h.services.Billing.MarkPaid(ctx, in.ID); err != nil {
		return nil, MarkInvoicePaidResult{}, mapError(err)
	}
	return nil, MarkInvoicePaidResult{Paid: true}, nil
}

type ExportInvoiceCSVParams struct {
	ID int64 `json:"id"`
}

type ExportInvoiceCSVResult struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
}

func (h *handler) exportInvoiceCSV(ctx context.Context, req *sdkmcp.CallToolRequest, in ExportInvoiceCSVParams) (*sdkmcp.CallToolResult, ExportInvoiceCSVResult, error) {
	content, filename, err := h.services.Billing.ExportCSV(ctx, in.ID)
	if err != nil {
		return nil, ExportInvoiceCSVResult{}, mapError(err)
	}
	return nil, ExportInvoiceCSVResult{Filename: filename, Content: string(content)}, nil
}

type CheckInvoiceTotalsParams struct{}

type CheckInvoiceTotalsResult struct {
	Mismatches []billing.Mismatch `json:"mismatches"`
	Consistent bool               `json:"consistent"`
}

func (h *handler) checkInvoiceTotals(ctx context.Context, req *sdkmcp.CallToolRequest, in CheckInvoiceTotalsParams) (*sdkmcp.CallToolResult, CheckInvoiceTotalsResult, error) {
	mismatches, err := h.services.Billing.CheckTotals(ctx)
	if err != nil {
		return nil, CheckInvoiceTotalsResult{}, mapError(err)
	}
	return nil, CheckInvoiceTotalsResult{Mismatches: mismatches, Consistent: len(mismatches) == 0}, nil
}

// parseTimeRange builds a session time range from a start plus either an
// explicit end or a fractional duration in hours.
func parseTimeRange(startStr, endStr string, durationHours float64) (time.Time, time.Time, error) {
	start, err := parseTime(startStr)
	if err != nil {
		return time.Time{}, time.Time{}, &APIError{Code: "INVALID_TIME", Message: fmt.Sprintf("invalid start_time %q", startStr)}
	}
	if endStr != "" {
		end, err := parseTime(endStr)
		if err != nil {
			return time.Time{}, time.Time{}, &APIError{Code: "INVALID_TIME", Message: fmt.Sprintf("invalid end_time %q", endStr)}
		}
		return start, end, nil
	}
	if durationHours <= 0 {
		return time.Time{}, time.Time{}, &APIError{Code: "INVALID_TIME", Message: "either end_time or a positive duration_hours is required"}
	}
	return start, start.Add(time.Duration(durationHours * float64(time.Hour))), nil
}

func parseTime(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.ParseInLocation("2006-01-02 15:04", value, time.Local)
}
