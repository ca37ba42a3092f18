package contentstore

import (
	"context"

	"github.com/MoonrakerAI/dt-exotics-las-vegas-sub003/kv"
	"github.com/MoonrakerAI/dt-exotics-las-vegas-sub003/record"
	"github.com/MoonrakerAI/dt-exotics-las-vegas-sub003/utils"
	"github.com/shopspring/decimal"
)

// Rentals is the booking/invoicing facade: rentals indexed by car and
// lifecycle state, invoices indexed by rental and state.
type Rentals struct {
	rentals  *Store[*record.Rental]
	invoices *Store[*record.Invoice]
	payments PaymentProvider
	log      utils.Logger
}

func rentalIndexSets(r *record.Rental) []string {
	return []string{
		carKey(record.KindRental, r.CarID),
		statusKey(record.KindRental, string(r.Status)),
	}
}

func invoiceIndexSets(i *record.Invoice) []string {
	return []string{
		rentalKey(record.KindInvoice, i.RentalID),
		statusKey(record.KindInvoice, string(i.Status)),
	}
}

func NewRentals(store kv.Store, ix *Indexer, payments PaymentProvider, log utils.Logger) *Rentals {
	return &Rentals{
		rentals: NewStore(store, ix, log, Descriptor[*record.Rental]{
			Kind:      record.KindRental,
			New:       func() *record.Rental { return &record.Rental{} },
			IndexSets: rentalIndexSets,
		}),
		invoices: NewStore(store, ix, log, Descriptor[*record.Invoice]{
			Kind:      record.KindInvoice,
			New:       func() *record.Invoice { return &record.Invoice{} },
			IndexSets: invoiceIndexSets,
		}),
		payments: payments,
		log:      log,
	}
}

func (r *Rentals) CreateRental(ctx context.Context, rec *record.Rental) (*record.Rental, error) {
	if rec.Status == "" {
		rec.Status = record.RentalPending
	}
	return r.rentals.Create(ctx, rec)
}

func (r *Rentals) GetRental(ctx context.Context, id string) (*record.Rental, error) {
	return r.rentals.Get(ctx, id)
}

type RentalPatch struct {
	Status          *record.RentalStatus `json:"status,omitempty"`
	TotalAmount     *decimal.Decimal     `json:"totalAmount,omitempty"`
	PaymentIntentID *string              `json:"paymentIntentId,omitempty"`
}

func (r *Rentals) UpdateRental(ctx context.Context, id string, patch RentalPatch) (*record.Rental, error) {
	return r.rentals.Update(ctx, id, func(rec *record.Rental) error {
		if patch.Status != nil {
			rec.Status = *patch.Status
		}
		if patch.TotalAmount != nil {
			rec.TotalAmount = *patch.TotalAmount
		}
		if patch.PaymentIntentID != nil {
			rec.PaymentIntentID = *patch.PaymentIntentID
		}
		return nil
	})
}

func (r *Rentals) DeleteRental(ctx context.Context, id string) error {
	return r.rentals.Delete(ctx, id)
}

func (r *Rentals) RentalsByCar(ctx context.Context, carID string, page Page) (Paged[*record.Rental], error) {
	recs, err := r.rentals.List(ctx, carKey(record.KindRental, carID))
	if err != nil {
		return Paged[*record.Rental]{}, err
	}
	SortByCreatedDesc(recs)
	return Paginate(recs, page), nil
}

func (r *Rentals) RentalsByStatus(ctx context.Context, status record.RentalStatus, page Page) (Paged[*record.Rental], error) {
	recs, err := r.rentals.List(ctx, statusKey(record.KindRental, string(status)))
	if err != nil {
		return Paged[*record.Rental]{}, err
	}
	SortByCreatedDesc(recs)
	return Paginate(recs, page), nil
}

func (r *Rentals) AllRentals(ctx context.Context, page Page) (Paged[*record.Rental], error) {
	recs, err := r.rentals.All(ctx)
	if err != nil {
		return Paged[*record.Rental]{}, err
	}
	SortByCreatedDesc(recs)
	return Paginate(recs, page), nil
}

// RentalDetail is the admin view: the rental plus the provider's view of
// its payment intent. A provider failure degrades to Payment=nil rather
// than failing the read.
type RentalDetail struct {
	Rental  *record.Rental `json:"rental"`
	Payment *PaymentIntent `json:"payment,omitempty"`
}

func (r *Rentals) Detail(ctx context.Context, id string) (*RentalDetail, error) {
	rec, err := r.rentals.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	detail := &RentalDetail{Rental: rec}
	if rec.PaymentIntentID != "" && r.payments != nil {
		intent, err := r.payments.RetrievePaymentIntent(ctx, rec.PaymentIntentID)
		if err != nil {
			r.log.WarnCtx(ctx, "payment intent lookup failed", "rental", id, "intent", rec.PaymentIntentID, "error", err)
		} else {
			detail.Payment = intent
		}
	}
	return detail, nil
}

func (r *Rentals) CreateInvoice(ctx context.Context, inv *record.Invoice) (*record.Invoice, error) {
	if inv.Status == "" {
		inv.Status = record.InvoiceDraft
	}
	return r.invoices.Create(ctx, inv)
}

func (r *Rentals) GetInvoice(ctx context.Context, id string) (*record.Invoice, error) {
	return r.invoices.Get(ctx, id)
}

func (r *Rentals) SetInvoiceStatus(ctx context.Context, id string, status record.InvoiceStatus) (*record.Invoice, error) {
	return r.invoices.Update(ctx, id, func(inv *record.Invoice) error {
		inv.Status = status
		return nil
	})
}

func (r *Rentals) DeleteInvoice(ctx context.Context, id string) error {
	return r.invoices.Delete(ctx, id)
}

func (r *Rentals) InvoicesForRental(ctx context.Context, rentalID string, page Page) (Paged[*record.Invoice], error) {
	recs, err := r.invoices.List(ctx, rentalKey(record.KindInvoice, rentalID))
	if err != nil {
		return Paged[*record.Invoice]{}, err
	}
	SortByCreatedDesc(recs)
	return Paginate(recs, page), nil
}
