package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"mime"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"go.uber.org/zap"

	"github.com/inkridge/studio-client/internal/api"
	"github.com/inkridge/studio-client/internal/chat"
	"github.com/inkridge/studio-client/internal/forms"
	"github.com/inkridge/studio-client/internal/gateway"
	"github.com/inkridge/studio-client/internal/guard"
	"github.com/inkridge/studio-client/internal/models"
	"github.com/inkridge/studio-client/internal/service"
	"github.com/inkridge/studio-client/internal/session"
	"github.com/inkridge/studio-client/pkg/config"
	apperrors "github.com/inkridge/studio-client/pkg/errors"
	"github.com/inkridge/studio-client/pkg/logger"
	"github.com/inkridge/studio-client/pkg/metrics"
)

const usage = `studioctl - tattoo studio & events client

Usage:
  studioctl login -email <email> -password <password>
  studioctl register -name <name> -email <email> -password <pw> -confirm <pw>
  studioctl logout
  studioctl whoami
  studioctl forgot-password -email <email>
  studioctl reset-password -email <email> -token <token> -password <pw> -confirm <pw>

  studioctl users list|create|update|delete [flags]
  studioctl appointments list|book|status|delete [flags]
  studioctl gallery list|upload|delete [flags]
  studioctl events list|create|update|delete [flags]
  studioctl tickets buy -event <id> -quantity <n> [-method esewa|khalti]
  studioctl payments list [-sort newest|oldest|highest|lowest] [-user <id>]
  studioctl chat rooms|history|send|watch [flags]
`

type app struct {
	cfg    *config.Config
	logr   *zap.Logger
	store  *session.Store
	client *api.Client
	gate   *guard.Gate

	auth         *service.AuthService
	users        *service.UserService
	appointments *service.AppointmentService
	gallery      *service.GalleryService
	events       *service.EventService
	tickets      *service.TicketService
	payments     *service.PaymentService
	chats        *service.ChatService

	submit forms.Submitter
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	a, err := newApp(cfg, logr)
	if err != nil {
		logr.Sugar().Fatalw("wiring failed", "error", err)
	}
	defer a.store.Close() //nolint:errcheck

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	runErr := a.run(ctx, os.Args[1:])
	if cfg.Metrics.DumpOnExit {
		dumpMetrics(logr)
	}
	if runErr != nil {
		fmt.Fprintln(os.Stderr, "error:", apperrors.FromError(runErr).Message)
		os.Exit(1)
	}
}

// dumpMetrics writes the collected request metrics to stderr in the
// prometheus text format, so a run can be inspected without a scrape target.
func dumpMetrics(logr *zap.Logger) {
	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		logr.Warn("metrics gather failed", zap.Error(err))
		return
	}
	enc := expfmt.NewEncoder(os.Stderr, expfmt.FmtText)
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			logr.Warn("metrics encode failed", zap.Error(err))
			return
		}
	}
}

func newApp(cfg *config.Config, logr *zap.Logger) (*app, error) {
	store, err := session.NewStore(cfg.Session.Path, logr)
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}

	client, err := api.New(api.Options{
		BaseURL:   cfg.API.BaseURL,
		CSRFPath:  cfg.API.CSRFPath,
		UserAgent: cfg.API.UserAgent,
		Timeout:   cfg.API.Timeout,
		Tokens:    store,
		Logger:    logr,
		Requests:  metrics.NewRequests(prometheus.DefaultRegisterer),
	})
	if err != nil {
		return nil, fmt.Errorf("build api client: %w", err)
	}

	validate := validator.New()

	attachmentRule := forms.FileRule{MaxBytes: cfg.Uploads.AttachmentMaxBytes, AllowedMIMEs: cfg.Uploads.AllowedMIMEs}
	galleryRule := forms.FileRule{MaxBytes: cfg.Uploads.GalleryMaxBytes, AllowedMIMEs: cfg.Uploads.AllowedMIMEs}
	window := service.BookingWindow{OpenHour: cfg.Booking.OpenHour, CloseHour: cfg.Booking.CloseHour}

	var transport chat.Transport
	if cfg.Chat.Transport == "redis" {
		transport, err = chat.NewRedisTransport(cfg.Chat.Redis, logr)
		if err != nil {
			logr.Warn("falling back to polling chat transport", zap.Error(err))
			transport = chat.NewPollingTransport(client, cfg.Chat.PollInterval, logr)
		}
	} else {
		transport = chat.NewPollingTransport(client, cfg.Chat.PollInterval, logr)
	}

	return &app{
		cfg:          cfg,
		logr:         logr,
		store:        store,
		client:       client,
		gate:         guard.New(store),
		auth:         service.NewAuthService(client, store, validate, logr),
		users:        service.NewUserService(client, validate, logr),
		appointments: service.NewAppointmentService(client, validate, logr, window, attachmentRule),
		gallery:      service.NewGalleryService(client, validate, logr, galleryRule),
		events:       service.NewEventService(client, validate, logr),
		tickets:      service.NewTicketService(client, validate, logr),
		payments:     service.NewPaymentService(client, logr),
		chats:        service.NewChatService(client, transport, validate, logr),
	}, nil
}

func (a *app) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Print(usage)
		return nil
	}

	switch args[0] {
	case "login":
		return a.cmdLogin(ctx, args[1:])
	case "register":
		return a.cmdRegister(ctx, args[1:])
	case "logout":
		return a.auth.Logout(ctx)
	case "whoami":
		return a.cmdWhoami()
	case "forgot-password":
		return a.cmdForgotPassword(ctx, args[1:])
	case "reset-password":
		return a.cmdResetPassword(ctx, args[1:])
	case "users":
		return a.cmdUsers(ctx, args[1:])
	case "appointments":
		return a.cmdAppointments(ctx, args[1:])
	case "gallery":
		return a.cmdGallery(ctx, args[1:])
	case "events":
		return a.cmdEvents(ctx, args[1:])
	case "tickets":
		return a.cmdTickets(ctx, args[1:])
	case "payments":
		return a.cmdPayments(ctx, args[1:])
	case "chat":
		return a.cmdChat(ctx, args[1:])
	case "help", "-h", "--help":
		fmt.Print(usage)
		return nil
	default:
		fmt.Print(usage)
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func (a *app) cmdLogin(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	if err := fs.Parse(args); err != nil {
		return err
	}

	return a.submit.Submit(ctx, func(ctx context.Context) error {
		result, err := a.auth.Login(ctx, models.LoginRequest{Email: *email, Password: *password})
		if err != nil {
			return err
		}
		fmt.Printf("signed in as %s (%s)\n", result.User.Name, result.User.Role)
		fmt.Printf("next: %s\n", result.Redirect)
		return nil
	})
}

func (a *app) cmdRegister(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("register", flag.ContinueOnError)
	name := fs.String("name", "", "full name")
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "password")
	confirm := fs.String("confirm", "", "password confirmation")
	if err := fs.Parse(args); err != nil {
		return err
	}

	return a.submit.Submit(ctx, func(ctx context.Context) error {
		result, err := a.auth.Register(ctx, models.RegisterRequest{
			Name: *name, Email: *email, Password: *password, PasswordConfirmation: *confirm,
		})
		if err != nil {
			return err
		}
		fmt.Printf("welcome, %s, you are signed in\n", result.User.Name)
		return nil
	})
}

func (a *app) cmdWhoami() error {
	sess, err := a.gate.Require()
	if err != nil {
		fmt.Println("not signed in")
		return nil
	}
	fmt.Printf("user #%d role=%s\n", sess.UserID, sess.Role)
	return nil
}

func (a *app) cmdForgotPassword(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("forgot-password", flag.ContinueOnError)
	email := fs.String("email", "", "account email")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := a.auth.ForgotPassword(ctx, models.ForgotPasswordRequest{Email: *email}); err != nil {
		return err
	}
	fmt.Println("reset instructions sent if the account exists")
	return nil
}

func (a *app) cmdResetPassword(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("reset-password", flag.ContinueOnError)
	email := fs.String("email", "", "account email")
	token := fs.String("token", "", "emailed reset token")
	password := fs.String("password", "", "new password")
	confirm := fs.String("confirm", "", "password confirmation")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := a.auth.ResetPassword(ctx, models.ResetPasswordRequest{
		Email: *email, Token: *token, Password: *password, PasswordConfirmation: *confirm,
	}); err != nil {
		return err
	}
	fmt.Println("password reset, sign in with the new password")
	return nil
}

func (a *app) cmdUsers(ctx context.Context, args []string) error {
	if _, err := a.gate.RequireRole(models.RoleAdmin); err != nil {
		return redirectToLogin(err)
	}
	if len(args) == 0 {
		return fmt.Errorf("usage: studioctl users list|create|update|delete")
	}

	switch args[0] {
	case "list":
		if err := a.users.Load(ctx); err != nil {
			return err
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tEMAIL\tROLE")
		for _, u := range a.users.Users() {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", u.ID, u.Name, u.Email, u.Role)
		}
		return w.Flush()
	case "create":
		fs := flag.NewFlagSet("users create", flag.ContinueOnError)
		name := fs.String("name", "", "full name")
		email := fs.String("email", "", "email")
		password := fs.String("password", "", "password")
		role := fs.String("role", "user", "admin|user|tattoo_artist")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		return a.submit.Submit(ctx, func(ctx context.Context) error {
			created, err := a.users.Create(ctx, models.CreateUserRequest{
				Name: *name, Email: *email, Password: *password, Role: models.Role(*role),
			})
			if err != nil {
				return err
			}
			fmt.Printf("created user #%d\n", created.ID)
			return nil
		})
	case "update":
		fs := flag.NewFlagSet("users update", flag.ContinueOnError)
		id := fs.Int64("id", 0, "user id")
		name := fs.String("name", "", "full name")
		email := fs.String("email", "", "email")
		role := fs.String("role", "user", "admin|user|tattoo_artist")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		updated, err := a.users.Update(ctx, *id, models.UpdateUserRequest{
			Name: *name, Email: *email, Role: models.Role(*role),
		})
		if err != nil {
			return err
		}
		fmt.Printf("updated user #%d\n", updated.ID)
		return nil
	case "delete":
		fs := flag.NewFlagSet("users delete", flag.ContinueOnError)
		id := fs.Int64("id", 0, "user id")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		if err := a.users.Remove(ctx, *id); err != nil {
			return err
		}
		fmt.Printf("deleted user #%d\n", *id)
		return nil
	default:
		return fmt.Errorf("unknown users subcommand %q", args[0])
	}
}

func (a *app) cmdAppointments(ctx context.Context, args []string) error {
	if _, err := a.gate.Require(); err != nil {
		return redirectToLogin(err)
	}
	if len(args) == 0 {
		return fmt.Errorf("usage: studioctl appointments list|book|status|delete")
	}

	switch args[0] {
	case "list":
		if err := a.appointments.Load(ctx); err != nil {
			return err
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tDATE\tTIME\tARTIST\tSTATUS")
		for _, ap := range a.appointments.Appointments() {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", ap.ID, ap.Date, ap.Time, ap.ArtistName, ap.Status)
		}
		return w.Flush()
	case "book":
		fs := flag.NewFlagSet("appointments book", flag.ContinueOnError)
		artist := fs.Int64("artist", 0, "artist id")
		date := fs.String("date", "", "YYYY-MM-DD")
		slot := fs.String("time", "", "HH:MM")
		desc := fs.String("description", "", "what you want done")
		attach := fs.String("attach", "", "reference image path (optional)")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}

		req := models.BookAppointmentRequest{ArtistID: *artist, Date: *date, Time: *slot, Description: *desc}
		if *attach != "" {
			info, err := os.Stat(*attach)
			if err != nil {
				return apperrors.Clone(apperrors.ErrValidation, "attachment file not found")
			}
			req.AttachmentName = filepath.Base(*attach)
			req.AttachmentMIME = mimeOf(*attach)
			req.AttachmentSize = info.Size()
		}

		return a.submit.Submit(ctx, func(ctx context.Context) error {
			created, err := a.appointments.Book(ctx, req, *attach)
			if err != nil {
				return err
			}
			fmt.Printf("booked appointment #%d for %s %s\n", created.ID, created.Date, created.Time)
			return nil
		})
	case "status":
		fs := flag.NewFlagSet("appointments status", flag.ContinueOnError)
		id := fs.Int64("id", 0, "appointment id")
		status := fs.String("set", "", "pending|confirmed|canceled|completed")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		updated, err := a.appointments.UpdateStatus(ctx, *id, models.AppointmentStatus(*status))
		if err != nil {
			return err
		}
		fmt.Printf("appointment #%d is now %s\n", updated.ID, updated.Status)
		return nil
	case "delete":
		fs := flag.NewFlagSet("appointments delete", flag.ContinueOnError)
		id := fs.Int64("id", 0, "appointment id")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		if err := a.appointments.Remove(ctx, *id); err != nil {
			return err
		}
		fmt.Printf("deleted appointment #%d\n", *id)
		return nil
	default:
		return fmt.Errorf("unknown appointments subcommand %q", args[0])
	}
}

func (a *app) cmdGallery(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: studioctl gallery list|upload|delete")
	}

	switch args[0] {
	case "list":
		if err := a.gallery.Load(ctx); err != nil {
			return err
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTITLE\tURL")
		for _, img := range a.gallery.Images() {
			fmt.Fprintf(w, "%d\t%s\t%s\n", img.ID, img.Title, img.ImageURL)
		}
		return w.Flush()
	case "upload":
		if _, err := a.gate.RequireRole(models.RoleAdmin, models.RoleArtist); err != nil {
			return redirectToLogin(err)
		}
		fs := flag.NewFlagSet("gallery upload", flag.ContinueOnError)
		title := fs.String("title", "", "image title")
		file := fs.String("file", "", "image path")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		info, err := os.Stat(*file)
		if err != nil {
			return apperrors.Clone(apperrors.ErrValidation, "image file not found")
		}
		req := models.UploadImageRequest{
			Title:    *title,
			FileName: filepath.Base(*file),
			FileMIME: mimeOf(*file),
			FileSize: info.Size(),
		}
		return a.submit.Submit(ctx, func(ctx context.Context) error {
			created, err := a.gallery.Upload(ctx, req, *file)
			if err != nil {
				return err
			}
			fmt.Printf("uploaded image #%d\n", created.ID)
			return nil
		})
	case "delete":
		if _, err := a.gate.RequireRole(models.RoleAdmin, models.RoleArtist); err != nil {
			return redirectToLogin(err)
		}
		fs := flag.NewFlagSet("gallery delete", flag.ContinueOnError)
		id := fs.Int64("id", 0, "image id")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		if err := a.gallery.Remove(ctx, *id); err != nil {
			return err
		}
		fmt.Printf("deleted image #%d\n", *id)
		return nil
	default:
		return fmt.Errorf("unknown gallery subcommand %q", args[0])
	}
}

func (a *app) cmdEvents(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: studioctl events list|create|update|delete")
	}

	switch args[0] {
	case "list":
		if err := a.events.Load(ctx); err != nil {
			return err
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTITLE\tDATE\tVENUE\tPRICE\tTICKETS")
		for _, ev := range a.events.Events() {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%.2f\t%d\n", ev.ID, ev.Title, ev.Date, ev.Venue, ev.Price, ev.AvailableTickets)
		}
		return w.Flush()
	case "create":
		if _, err := a.gate.RequireRole(models.RoleAdmin); err != nil {
			return redirectToLogin(err)
		}
		fs := flag.NewFlagSet("events create", flag.ContinueOnError)
		title := fs.String("title", "", "event title")
		desc := fs.String("description", "", "event description")
		date := fs.String("date", "", "YYYY-MM-DD")
		venue := fs.String("venue", "", "venue")
		price := fs.Float64("price", 0, "ticket price")
		tickets := fs.Int("tickets", 0, "available tickets")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		return a.submit.Submit(ctx, func(ctx context.Context) error {
			created, err := a.events.Create(ctx, models.CreateEventRequest{
				Title: *title, Description: *desc, Date: *date, Venue: *venue,
				Price: *price, AvailableTickets: *tickets,
			})
			if err != nil {
				return err
			}
			fmt.Printf("created event #%d\n", created.ID)
			return nil
		})
	case "update":
		if _, err := a.gate.RequireRole(models.RoleAdmin); err != nil {
			return redirectToLogin(err)
		}
		fs := flag.NewFlagSet("events update", flag.ContinueOnError)
		id := fs.Int64("id", 0, "event id")
		title := fs.String("title", "", "event title")
		desc := fs.String("description", "", "event description")
		date := fs.String("date", "", "YYYY-MM-DD")
		venue := fs.String("venue", "", "venue")
		price := fs.Float64("price", 0, "ticket price")
		tickets := fs.Int("tickets", 0, "available tickets")
		revision := fs.Int64("revision", 0, "revision seen by the editor")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		updated, err := a.events.Update(ctx, *id, models.UpdateEventRequest{
			Title: *title, Description: *desc, Date: *date, Venue: *venue,
			Price: *price, AvailableTickets: *tickets, Revision: *revision,
		})
		if err != nil {
			return err
		}
		fmt.Printf("updated event #%d\n", updated.ID)
		return nil
	case "delete":
		if _, err := a.gate.RequireRole(models.RoleAdmin); err != nil {
			return redirectToLogin(err)
		}
		fs := flag.NewFlagSet("events delete", flag.ContinueOnError)
		id := fs.Int64("id", 0, "event id")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		if err := a.events.Remove(ctx, *id); err != nil {
			return err
		}
		fmt.Printf("deleted event #%d\n", *id)
		return nil
	default:
		return fmt.Errorf("unknown events subcommand %q", args[0])
	}
}

func (a *app) cmdTickets(ctx context.Context, args []string) error {
	sess, err := a.gate.Require()
	if err != nil {
		return redirectToLogin(err)
	}
	if len(args) == 0 || args[0] != "buy" {
		return fmt.Errorf("usage: studioctl tickets buy -event <id> -quantity <n>")
	}

	fs := flag.NewFlagSet("tickets buy", flag.ContinueOnError)
	eventID := fs.Int64("event", 0, "event id")
	quantity := fs.Int("quantity", 1, "ticket quantity")
	method := fs.String("method", "esewa", "esewa|khalti")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}

	if err := a.events.Load(ctx); err != nil {
		return err
	}
	event, ok := a.events.Get(*eventID)
	if !ok {
		return apperrors.Clone(apperrors.ErrNotFound, "event not found")
	}

	return a.submit.Submit(ctx, func(ctx context.Context) error {
		ticket, err := a.tickets.Purchase(ctx, models.PurchaseTicketRequest{
			EventID: *eventID, Quantity: *quantity, Method: models.PaymentMethod(*method),
		}, event)
		if err != nil {
			return err
		}

		if ticket.Method == models.MethodEsewa && ticket.Status != "paid" {
			listener := gateway.NewListener(a.cfg.Gateway, a.logr)
			fmt.Println("open this URL to pay:")
			fmt.Println("  " + listener.RedirectURL(*ticket))

			awaitCtx, cancel := context.WithTimeout(ctx, a.cfg.Gateway.AwaitTimeout)
			defer cancel()
			result, err := listener.Await(awaitCtx)
			if err != nil {
				return apperrors.Wrap(err, apperrors.ErrNetwork.Code, 0, "payment callback never arrived")
			}
			if !result.Succeeded {
				return apperrors.Clone(apperrors.ErrConflict, "payment was not completed")
			}

			ticket, err = a.tickets.VerifyEsewa(ctx, models.VerifyEsewaRequest{
				TicketID: ticket.ID, Amount: result.Amount, Reference: result.Reference,
			})
			if err != nil {
				return err
			}
		}

		fmt.Printf("ticket #%d: %d × %s = Rs. %.2f (%s)\n",
			ticket.ID, ticket.Quantity, event.Title, ticket.TotalAmount, ticket.Status)

		if ticket.Status == "paid" {
			buyer := models.User{ID: sess.UserID}
			pdf, err := a.tickets.Receipt(*ticket, event, buyer)
			if err != nil {
				a.logr.Warn("receipt rendering failed", zap.Error(err))
				return nil
			}
			if err := os.MkdirAll(a.cfg.Receipt.OutputDir, 0o755); err != nil {
				return nil
			}
			path := filepath.Join(a.cfg.Receipt.OutputDir, fmt.Sprintf("ticket-%d.pdf", ticket.ID))
			if err := os.WriteFile(path, pdf, 0o644); err == nil {
				fmt.Printf("receipt saved to %s\n", path)
			}
		}
		return nil
	})
}

func (a *app) cmdPayments(ctx context.Context, args []string) error {
	sess, err := a.gate.Require()
	if err != nil {
		return redirectToLogin(err)
	}
	if len(args) == 0 || args[0] != "list" {
		return fmt.Errorf("usage: studioctl payments list [-sort order] [-user id]")
	}

	fs := flag.NewFlagSet("payments list", flag.ContinueOnError)
	order := fs.String("sort", "newest", "newest|oldest|highest|lowest")
	userID := fs.Int64("user", 0, "filter to one user (admins only)")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}

	if sess.Role == models.RoleAdmin && *userID == 0 {
		err = a.payments.LoadAll(ctx)
	} else {
		target := *userID
		if target == 0 || sess.Role != models.RoleAdmin {
			target = sess.UserID
		}
		err = a.payments.LoadForUser(ctx, target)
	}
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tUSER\tAMOUNT\tMETHOD\tSTATUS\tDATE")
	for _, p := range a.payments.Sorted(models.PaymentSort(*order)) {
		fmt.Fprintf(w, "%d\t%s\t%.2f\t%s\t%s\t%s\n",
			p.ID, p.UserName, p.TotalAmount, p.Method, p.Status, p.CreatedAt.Format("2006-01-02 15:04"))
	}
	return w.Flush()
}

func (a *app) cmdChat(ctx context.Context, args []string) error {
	if _, err := a.gate.Require(); err != nil {
		return redirectToLogin(err)
	}
	if len(args) == 0 {
		return fmt.Errorf("usage: studioctl chat rooms|history|send|watch")
	}

	switch args[0] {
	case "rooms":
		rooms, err := a.chats.Rooms(ctx)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tWITH\tLAST MESSAGE")
		for _, r := range rooms {
			fmt.Fprintf(w, "%d\t%s\t%s\n", r.ID, r.UserName, r.LastMessage)
		}
		return w.Flush()
	case "history":
		fs := flag.NewFlagSet("chat history", flag.ContinueOnError)
		room := fs.Int64("room", 0, "room id")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		messages, err := a.chats.Messages(ctx, *room)
		if err != nil {
			return err
		}
		for _, m := range messages {
			fmt.Printf("[%s] #%d: %s\n", m.CreatedAt.Format("15:04"), m.SenderID, m.Body)
		}
		return nil
	case "send":
		fs := flag.NewFlagSet("chat send", flag.ContinueOnError)
		room := fs.Int64("room", 0, "room id")
		body := fs.String("message", "", "message body")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		return a.submit.Submit(ctx, func(ctx context.Context) error {
			sent, err := a.chats.Send(ctx, *room, models.SendMessageRequest{Body: *body})
			if err != nil {
				return err
			}
			fmt.Printf("sent message #%d\n", sent.ID)
			return nil
		})
	case "watch":
		fs := flag.NewFlagSet("chat watch", flag.ContinueOnError)
		room := fs.Int64("room", 0, "room id")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		events, err := a.chats.Listen(ctx, *room)
		if err != nil {
			return err
		}
		fmt.Println("watching, press Ctrl-C to stop")
		for m := range events {
			fmt.Printf("[%s] #%d: %s\n", m.CreatedAt.Format("15:04"), m.SenderID, m.Body)
		}
		return nil
	default:
		return fmt.Errorf("unknown chat subcommand %q", args[0])
	}
}

func redirectToLogin(err error) error {
	apperr := apperrors.FromError(err)
	if apperr.Code == apperrors.ErrUnauthorized.Code {
		return apperrors.Clone(apperr, "sign in first: studioctl login -email <email> -password <password>")
	}
	return err
}

func mimeOf(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if m := mime.TypeByExtension(ext); m != "" {
		if i := strings.IndexByte(m, ';'); i > 0 {
			return m[:i]
		}
		return m
	}
	return "application/octet-stream"
}
