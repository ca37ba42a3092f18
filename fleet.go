package contentstore

import (
	"context"

	"github.com/MoonrakerAI/dt-exotics-las-vegas-sub003/kv"
	"github.com/MoonrakerAI/dt-exotics-las-vegas-sub003/record"
	"github.com/MoonrakerAI/dt-exotics-las-vegas-sub003/utils"
	"github.com/shopspring/decimal"
)

// Fleet is the car facade: the same engine as the blog with an
// availability index instead of category membership.
type Fleet struct {
	cars *Store[*record.Car]
	log  utils.Logger
}

func carIndexSets(c *record.Car) []string {
	if c.Available {
		return []string{availableKey(record.KindCar)}
	}
	return nil
}

func NewFleet(store kv.Store, ix *Indexer, log utils.Logger) *Fleet {
	return &Fleet{
		cars: NewStore(store, ix, log, Descriptor[*record.Car]{
			Kind:      record.KindCar,
			New:       func() *record.Car { return &record.Car{} },
			IndexSets: carIndexSets,
			SearchText: func(c *record.Car) []string {
				return []string{c.Make, c.Model}
			},
		}),
		log: log,
	}
}

func (f *Fleet) CreateCar(ctx context.Context, c *record.Car) (*record.Car, error) {
	return f.cars.Create(ctx, c)
}

func (f *Fleet) GetCar(ctx context.Context, id string) (*record.Car, error) {
	return f.cars.Get(ctx, id)
}

type CarPatch struct {
	Make      *string          `json:"make,omitempty"`
	Model     *string          `json:"model,omitempty"`
	Year      *int             `json:"year,omitempty"`
	DailyRate *decimal.Decimal `json:"dailyRate,omitempty"`
	Available *bool            `json:"available,omitempty"`
	ImageURLs *[]string        `json:"imageUrls,omitempty"`
}

func (f *Fleet) UpdateCar(ctx context.Context, id string, patch CarPatch) (*record.Car, error) {
	return f.cars.Update(ctx, id, func(c *record.Car) error {
		if patch.Make != nil {
			c.Make = *patch.Make
		}
		if patch.Model != nil {
			c.Model = *patch.Model
		}
		if patch.Year != nil {
			c.Year = *patch.Year
		}
		if patch.DailyRate != nil {
			c.DailyRate = *patch.DailyRate
		}
		if patch.Available != nil {
			c.Available = *patch.Available
		}
		if patch.ImageURLs != nil {
			c.ImageURLs = *patch.ImageURLs
		}
		return nil
	})
}

func (f *Fleet) DeleteCar(ctx context.Context, id string) error {
	return f.cars.Delete(ctx, id)
}

func (f *Fleet) Available(ctx context.Context, page Page) (Paged[*record.Car], error) {
	cars, err := f.cars.List(ctx, availableKey(record.KindCar))
	if err != nil {
		return Paged[*record.Car]{}, err
	}
	SortByCreatedDesc(cars)
	return Paginate(cars, page), nil
}

func (f *Fleet) AllCars(ctx context.Context, page Page) (Paged[*record.Car], error) {
	cars, err := f.cars.All(ctx)
	if err != nil {
		return Paged[*record.Car]{}, err
	}
	SortByCreatedDesc(cars)
	return Paginate(cars, page), nil
}

func (f *Fleet) SearchCars(ctx context.Context, term string, page Page) (Paged[*record.Car], error) {
	cars, err := f.cars.Search(ctx, term)
	if err != nil {
		return Paged[*record.Car]{}, err
	}
	SortByCreatedDesc(cars)
	return Paginate(cars, page), nil
}
