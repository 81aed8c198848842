package conversation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"cafe_voice_backend/internal/conversation/domain"
	domainevents "cafe_voice_backend/internal/events"
	"cafe_voice_backend/internal/menu"
	"cafe_voice_backend/internal/oracle"
	"cafe_voice_backend/platform/events"
	"cafe_voice_backend/platform/logger"
)

// Spoken phrases used outside the extractor's own response text.
const (
	utteranceGreeting    = "¡Hola! Bienvenido a la cafetería. ¿Qué le gustaría ordenar hoy?"
	utteranceRepeat      = "Disculpe, no le escuché bien. ¿Podría repetirlo, por favor?"
	utteranceApology     = "Disculpe, tuve un problema para entenderle. ¿Podría repetirlo, por favor?"
	utteranceSystemError = "Lo sentimos, ocurrió un error en nuestro sistema y no pudimos registrar su pedido. Por favor llame de nuevo más tarde."
)

// FinalOrder is the write contract handed to persistence at finalization.
type FinalOrder struct {
	CallID        string
	CustomerName  string
	CustomerPhone string
	Total         float64
	Items         []domain.Item
}

// OrderWriter persists a completed order atomically and returns its id.
type OrderWriter interface {
	WriteOrder(ctx context.Context, order FinalOrder) (string, error)
}

// Dispatcher forwards a finalized order's items to a preparation area.
// Dispatch failures are logged and never surfaced to the caller.
type Dispatcher interface {
	Dispatch(ctx context.Context, orderID string, area domain.Area, items []domain.Item) error
}

// Extractor runs one oracle query for a turn.
type Extractor interface {
	Query(ctx context.Context, callID string, input oracle.TurnInput) (*oracle.Result, error)
}

// TurnResult is the outbound contract for one turn of the voice transport.
type TurnResult struct {
	Utterance            string
	Continue             bool
	NextPromptTimeoutSec int
}

// Controller is the per-turn state machine driver.
type Controller struct {
	registry      Registry
	oracle        Extractor
	reconciler    *Reconciler
	orders        OrderWriter
	dispatcher    Dispatcher
	bus           events.Bus
	catalog       *menu.Catalog
	extras        menu.ExtrasTable
	log           *logger.Logger
	promptTimeout int
}

func NewController(
	registry Registry,
	extractor Extractor,
	reconciler *Reconciler,
	orders OrderWriter,
	dispatcher Dispatcher,
	bus events.Bus,
	catalog *menu.Catalog,
	extras menu.ExtrasTable,
	log *logger.Logger,
	promptTimeoutSec int,
) *Controller {
	if promptTimeoutSec <= 0 {
		promptTimeoutSec = 5
	}
	return &Controller{
		registry:      registry,
		oracle:        extractor,
		reconciler:    reconciler,
		orders:        orders,
		dispatcher:    dispatcher,
		bus:           bus,
		catalog:       catalog,
		extras:        extras,
		log:           log,
		promptTimeout: promptTimeoutSec,
	}
}

// HandleTurn runs one turn of the conversation. Every path returns a valid
// TurnResult so the transport always has something to speak.
func (c *Controller) HandleTurn(ctx context.Context, callID, callerPhone, transcript string) (TurnResult, error) {
	started := time.Now()

	state, created, err := c.registry.GetOrCreate(ctx, callID, callerPhone)
	if err != nil {
		return TurnResult{Utterance: utteranceSystemError, Continue: false}, err
	}

	if created {
		c.bus.Publish(ctx, domainevents.CallStarted{
			BaseEvent:   events.NewBaseEvent(),
			CallID:      callID,
			CallerPhone: callerPhone,
		})
		return c.finishTurn(state, started, TurnResult{
			Utterance:            utteranceGreeting,
			Continue:             true,
			NextPromptTimeoutSec: c.promptTimeout,
		}), nil
	}

	if transcript == "" {
		return c.finishTurn(state, started, TurnResult{
			Utterance:            utteranceRepeat,
			Continue:             true,
			NextPromptTimeoutSec: c.promptTimeout,
		}), nil
	}

	result, err := c.oracle.Query(ctx, callID, oracle.TurnInput{
		Transcript:    transcript,
		Stage:         state.Stage,
		Items:         state.Items,
		CustomerName:  state.CustomerName,
		CustomerPhone: state.CustomerPhone,
		Menu:          c.catalog,
		Extras:        c.extras,
	})
	if err != nil {
		return c.degradedTurn(ctx, state, transcript, err, started), nil
	}

	utterance := c.reconciler.Reconcile(state, result)
	state.PendingTranscript = ""
	state.Turns++

	if state.Stage.IsTerminal() {
		return c.finalizeCall(ctx, state, utterance, started)
	}

	if err := c.registry.Update(ctx, state); err != nil {
		c.log.WithCallID(callID).Error("session update failed", "error", err)
		return TurnResult{Utterance: utteranceSystemError, Continue: false}, err
	}

	return c.finishTurn(state, started, TurnResult{
		Utterance:            utterance,
		Continue:             true,
		NextPromptTimeoutSec: c.promptTimeout,
	}), nil
}

// degradedTurn preserves the session untouched apart from recording the
// transcript that could not be reconciled, and asks the caller to repeat.
func (c *Controller) degradedTurn(ctx context.Context, state *State, transcript string, cause error, started time.Time) TurnResult {
	patch := Patch{PendingTranscript: &transcript}
	state.Apply(patch)
	if err := c.registry.Update(ctx, state); err != nil {
		c.log.WithCallID(state.CallID).Error("session update failed after degraded turn", "error", err)
	}

	var oe *oracle.Error
	transient := errors.As(cause, &oe) && oe.Transient
	reason := cause.Error()
	if oe != nil {
		reason = oe.Reason
	}
	c.bus.Publish(ctx, domainevents.TurnDegraded{
		BaseEvent: events.NewBaseEvent(),
		CallID:    state.CallID,
		Stage:     string(state.Stage),
		Transient: transient,
		Reason:    reason,
	})

	return c.finishTurn(state, started, TurnResult{
		Utterance:            utteranceApology,
		Continue:             true,
		NextPromptTimeoutSec: c.promptTimeout,
	})
}

// finalizeCall writes the order, notifies the preparation areas, and ends
// the call. A persistence failure is fatal for the call: the session is
// discarded and the caller hears a system error.
func (c *Controller) finalizeCall(ctx context.Context, state *State, utterance string, started time.Time) (TurnResult, error) {
	order := FinalOrder{
		CallID:        state.CallID,
		CustomerName:  state.CustomerName,
		CustomerPhone: state.CustomerPhone,
		Total:         state.Total,
		Items:         state.Items,
	}

	orderID, err := c.orders.WriteOrder(ctx, order)
	if err != nil {
		c.log.WithCallID(state.CallID).Error("order write failed at finalization", "error", err)
		if derr := c.registry.Delete(ctx, state.CallID); derr != nil {
			c.log.WithCallID(state.CallID).Error("session delete failed", "error", derr)
		}
		return c.finishTurn(state, started, TurnResult{Utterance: utteranceSystemError, Continue: false}), err
	}

	var g errgroup.Group
	for area, items := range domain.PartitionByArea(state.Items) {
		g.Go(func() error {
			if err := c.dispatcher.Dispatch(ctx, orderID, area, items); err != nil {
				c.log.DispatchError(string(area), err)
			}
			return nil
		})
	}
	_ = g.Wait()

	c.bus.Publish(ctx, domainevents.OrderFinalized{
		BaseEvent:    events.NewBaseEvent(),
		CallID:       state.CallID,
		OrderID:      orderID,
		CustomerName: state.CustomerName,
		Total:        state.Total,
		Items:        state.Items,
	})

	if err := c.registry.Delete(ctx, state.CallID); err != nil {
		c.log.WithCallID(state.CallID).Error("session delete failed", "error", err)
	}

	closing := fmt.Sprintf("%s Su número de pedido es %s. ¡Gracias por su compra!", utterance, orderID)
	return c.finishTurn(state, started, TurnResult{Utterance: closing, Continue: false}), nil
}

func (c *Controller) finishTurn(state *State, started time.Time, result TurnResult) TurnResult {
	c.log.CallTurn(state.CallID, string(state.Stage), result.Continue, float64(time.Since(started).Milliseconds()))
	return result
}
