package settlement

import (
	"context"

	"github.com/fundgate/fundgate/internal/model"
)

// Sink is the outbound settlement/transfer channel. Instructions are
// fire-and-forget from the engine's perspective; they are only sent after
// the enclosing state transaction has committed.
type Sink interface {
	SendCash(ctx context.Context, transfer model.CashTransfer) error
	TransferPosition(ctx context.Context, transfer model.PositionTransfer) error
	SubmitCommands(ctx context.Context, commands []model.OrderCommand) error
}

// Recorder accumulates instructions inside the transaction boundary and
// replays them into a Sink once the commit has succeeded. A failed call
// simply drops the recorder, so no instruction escapes an aborted
// transaction.
type Recorder struct {
	cash      []model.CashTransfer
	positions []model.PositionTransfer
	commands  []model.OrderCommand
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) SendCash(transfer model.CashTransfer) {
	r.cash = append(r.cash, transfer)
}

func (r *Recorder) TransferPosition(transfer model.PositionTransfer) {
	r.positions = append(r.positions, transfer)
}

func (r *Recorder) SubmitCommands(commands []model.OrderCommand) {
	r.commands = append(r.commands, commands...)
}

func (r *Recorder) CashTransfers() []model.CashTransfer {
	return r.cash
}

func (r *Recorder) PositionTransfers() []model.PositionTransfer {
	return r.positions
}

func (r *Recorder) Flush(ctx context.Context, sink Sink) error {
	for _, transfer := range r.cash {
		if err := sink.SendCash(ctx, transfer); err != nil {
			return err
		}
	}
	for _, transfer := range r.positions {
		if err := sink.TransferPosition(ctx, transfer); err != nil {
			return err
		}
	}
	if len(r.commands) > 0 {
		if err := sink.SubmitCommands(ctx, r.commands); err != nil {
			return err
		}
	}
	return nil
}
