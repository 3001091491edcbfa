package board

import (
	"context"

	"furniture_board/internal/models"
	"furniture_board/internal/pipeline"
)

// DragController turns pick-up and drop gestures into stage moves. It knows
// nothing about rendering: a pick-up carries the card identity, a drop
// carries the target column.
type DragController struct {
	store *Store
}

func NewDragController(store *Store) *DragController {
	return &DragController{store: store}
}

// PickUp records the dragged card and raises the dragging flag.
func (d *DragController) PickUp(item DragItem) error {
	if item.ID == "" || (item.Kind != models.WorkflowOrder && item.Kind != models.WorkflowExpense) {
		return ErrValidation
	}
	d.store.SetDragState(DragState{IsDragging: true, DraggedItem: &item})
	return nil
}

// Drop ends the gesture. A missing target or a column of the other workflow
// is a silent no-op; otherwise exactly one MoveCard is issued. Reports
// whether a move was issued.
func (d *DragController) Drop(ctx context.Context, target *pipeline.Column) bool {
	item := d.store.EndDrag()
	if item == nil || target == nil {
		return false
	}
	if !pipeline.Accepts(*target, item.Kind) {
		return false
	}
	d.store.MoveCard(ctx, item.Kind, item.ID, target.Stage)
	return true
}

// Overlay resolves the card under the pointer while a drag is in progress.
// If the record left the board since pick-up there is nothing to draw.
func (d *DragController) Overlay() (Card, bool) {
	ds := d.store.DragState()
	if !ds.IsDragging || ds.DraggedItem == nil {
		return Card{}, false
	}
	return d.store.Lookup(ds.DraggedItem.Kind, ds.DraggedItem.ID)
}
