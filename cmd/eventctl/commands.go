package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/eventful-services/common/config"
	"github.com/eventful-services/common/wallet"
	eventmodels "github.com/eventful-services/services/event-lambda/models"
	"github.com/eventful-services/services/event-lambda/repository"
	eventusecase "github.com/eventful-services/services/event-lambda/usecase"
	ticketmodels "github.com/eventful-services/services/ticket-lambda/models"
	ticketusecase "github.com/eventful-services/services/ticket-lambda/usecase"
	"github.com/eventful-services/services/validation-lambda/models"
	validationusecase "github.com/eventful-services/services/validation-lambda/usecase"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	priceStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	errorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	cardStyle  = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("8")).
			Padding(0, 1).
			MarginBottom(1)
)

func loadCatalog(ctx context.Context, configPath string) (*config.AppConfig, *eventusecase.EventUseCase, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	repo, err := repository.Open(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, eventusecase.NewEventUseCase(repo), nil
}

// ============================================================
// events
// ============================================================

func runEvents(args []string, stdout io.Writer) error {
	var configPath string
	flags := newFlagSet("events", &configPath)
	if err := parse(flags, args); err != nil {
		return err
	}

	ctx := context.Background()
	_, catalog, err := loadCatalog(ctx, configPath)
	if err != nil {
		return err
	}
	for _, e := range catalog.ListEvents(ctx) {
		fmt.Fprintln(stdout, renderEvent(e))
	}
	return nil
}

func renderEvent(e eventmodels.Event) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("#%d %s", e.ID, e.Title)))
	b.WriteString("\n")
	b.WriteString(labelStyle.Render(fmt.Sprintf("%s · %s %s · %s", e.Category, e.Date, e.Time, e.Location)))
	for _, t := range e.Tickets {
		b.WriteString(fmt.Sprintf("\n  %-10s %s  %s",
			t.Type,
			priceStyle.Render("$"+strconv.Itoa(t.Price)),
			labelStyle.Render(fmt.Sprintf("%d available", t.Available)),
		))
	}
	return cardStyle.Render(b.String())
}

// ============================================================
// validate
// ============================================================

func runValidate(args []string, stdout io.Writer) error {
	var (
		configPath string
		file       string
	)
	flags := newFlagSet("validate", &configPath)
	flags.StringVarP(&file, "file", "f", "", "callback payload JSON (- for stdin)")
	if err := parse(flags, args); err != nil {
		return err
	}
	if file == "" {
		return fmt.Errorf("--file is required")
	}

	data, err := readInput(file)
	if err != nil {
		return err
	}
	var payload models.CallbackPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("parse %s: %w", file, err)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	// offline: never sends email
	uc, err := validationusecase.NewValidationUseCase(cfg.Validation, config.EmailNever, nil, nil)
	if err != nil {
		return err
	}

	result := uc.Validate(context.Background(), payload, models.TicketSelection{})
	var out interface{} = result.Response
	if !result.Valid() {
		out = models.ErrorResponse{Errors: result.Errors}
		fmt.Fprintln(stdout, errorStyle.Render("Payload rejected"))
	}
	return writeJSON(stdout, out)
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

// ============================================================
// ticket-pdf
// ============================================================

func runTicketPDF(args []string, stdout io.Writer) error {
	var (
		configPath string
		query      ticketmodels.TicketQuery
		output     string
	)
	flags := newFlagSet("ticket-pdf", &configPath)
	flags.IntVar(&query.EventID, "event", 1, "event id")
	flags.StringVar(&query.Type, "type", ticketmodels.DefaultTicketType, "ticket type")
	flags.StringVar(&query.Holder, "holder", "", "holder email")
	flags.StringVarP(&output, "output", "o", "", "output file (default ticket-<id>.pdf)")
	if err := parse(flags, args); err != nil {
		return err
	}

	ctx := context.Background()
	_, catalog, err := loadCatalog(ctx, configPath)
	if err != nil {
		return err
	}
	tickets := ticketusecase.NewTicketUseCase(catalog)

	ticket, err := tickets.Issue(ctx, query)
	if err != nil {
		return err
	}
	data, err := tickets.PDF(ticket, [3]int{})
	if err != nil {
		return err
	}
	if output == "" {
		output = ticket.PDFFilename()
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "%s %s (%s, $%d) -> %s\n", titleStyle.Render(ticket.ID), ticket.EventTitle, ticket.Type, ticket.Price, output)
	return nil
}

// ============================================================
// send-calls
// ============================================================

func runSendCalls(args []string, stdout io.Writer) error {
	var (
		configPath string
		total      int
	)
	flags := newFlagSet("send-calls", &configPath)
	flags.IntVar(&total, "total", 0, "order total in dollars")
	if err := parse(flags, args); err != nil {
		return err
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	payer := wallet.NewPayer(wallet.NewRegistry(), cfg.Wallet)
	params, _, err := payer.BuildSendCalls(wallet.PaymentRequest{
		TotalPrice:  total,
		Requests:    wallet.DefaultRequests(),
		CallbackURL: cfg.CallbackURL(),
	})
	if err != nil {
		return err
	}
	return writeJSON(stdout, wallet.RequestArguments{
		Method: wallet.MethodSendCalls,
		Params: []interface{}{params},
	})
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
