// Package gateway handles the payment-gateway redirect flow: it builds the
// eSewa redirect URL and runs a short-lived loopback listener that captures
// the success/failure callback. The gateway's own protocol stays external.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/inkridge/studio-client/internal/models"
	"github.com/inkridge/studio-client/pkg/config"
)

// CallbackResult carries the query values eSewa appends to the redirect.
type CallbackResult struct {
	Succeeded bool
	OrderID   string
	Amount    string
	Reference string
}

// Listener waits for exactly one gateway callback on a loopback address.
type Listener struct {
	cfg    config.GatewayConfig
	logger *zap.Logger
}

// NewListener constructs a Listener.
func NewListener(cfg config.GatewayConfig, logger *zap.Logger) *Listener {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Listener{cfg: cfg, logger: logger}
}

// RedirectURL builds the eSewa payment URL for a pending ticket. The user
// opens it in a browser; eSewa redirects back to the loopback listener.
func (l *Listener) RedirectURL(ticket models.Ticket) string {
	success := fmt.Sprintf("http://%s%s?status=success", l.cfg.CallbackAddr, l.cfg.CallbackPath)
	failure := fmt.Sprintf("http://%s%s?status=failure", l.cfg.CallbackAddr, l.cfg.CallbackPath)

	q := url.Values{}
	q.Set("amt", fmt.Sprintf("%.2f", ticket.TotalAmount))
	q.Set("txAmt", "0")
	q.Set("psc", "0")
	q.Set("pdc", "0")
	q.Set("tAmt", fmt.Sprintf("%.2f", ticket.TotalAmount))
	q.Set("pid", fmt.Sprintf("ticket-%d", ticket.ID))
	q.Set("scd", l.cfg.MerchantCode)
	q.Set("su", success)
	q.Set("fu", failure)
	return l.cfg.EsewaURL + "?" + q.Encode()
}

// Await serves the callback route until one callback arrives or ctx is
// canceled, whichever comes first.
func (l *Listener) Await(ctx context.Context) (*CallbackResult, error) {
	results := make(chan CallbackResult, 1)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.GET(l.cfg.CallbackPath, func(c *gin.Context) {
		result := CallbackResult{
			Succeeded: c.Query("status") == "success" && c.Query("refId") != "",
			OrderID:   c.Query("oid"),
			Amount:    c.Query("amt"),
			Reference: c.Query("refId"),
		}
		select {
		case results <- result:
		default:
		}
		if result.Succeeded {
			c.String(http.StatusOK, "Payment received, you can close this window.")
			return
		}
		c.String(http.StatusOK, "Payment was not completed, you can close this window.")
	})

	ln, err := net.Listen("tcp", l.cfg.CallbackAddr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", l.cfg.CallbackAddr, err)
	}
	srv := &http.Server{Handler: r}

	serveErr := make(chan error, 1)
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()
	defer srv.Close()

	l.logger.Info("waiting for payment callback", zap.String("addr", l.cfg.CallbackAddr))

	select {
	case result := <-results:
		return &result, nil
	case err := <-serveErr:
		return nil, fmt.Errorf("callback listener: %w", err)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
