package seed

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"farmacia/m/domain"
	"farmacia/m/internal/store"

	"github.com/shopspring/decimal"
)

// LoadProducts ingests the catalog CSV, skipping products whose name is
// already present. Failures are logged; seeding never stops startup.
func LoadProducts(ctx context.Context, st *store.Store, csvPath string) {
	if csvPath == "" {
		return
	}
	file, err := os.Open(csvPath)
	if err != nil {
		log.Printf("unable to load product catalog %s: %v", csvPath, err)
		return
	}
	defer file.Close()

	rows, err := ImportProducts(ctx, st, file)
	if err != nil {
		log.Printf("unable to seed product catalog: %v", err)
		return
	}
	log.Printf("seeded product catalog with %d rows", rows)
}

// ImportProducts reads nombre,descripcion,precio_unitario[,imagen_url]
// rows after a header line and inserts them in one transaction.
func ImportProducts(ctx context.Context, st *store.Store, r io.Reader) (int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	// Skip header
	if _, err := reader.Read(); err != nil {
		return 0, fmt.Errorf("read catalog header: %w", err)
	}

	rows := 0
	err := st.InTx(ctx, func(q *store.Queries) error {
		for {
			record, err := reader.Read()
			if err == io.EOF {
				return nil
			}
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				log.Printf("skipping malformed product row: %v", err)
				continue
			}
			if err != nil {
				return fmt.Errorf("read catalog: %w", err)
			}
			product, ok := parseProduct(record)
			if !ok {
				continue
			}
			if _, err := q.FindProductByName(ctx, product.Name); err == nil {
				continue
			} else if !errors.Is(err, store.ErrNotFound) {
				return err
			}
			if _, err := q.CreateProduct(ctx, product); err != nil {
				return fmt.Errorf("insert product %s: %w", product.Name, err)
			}
			rows++
		}
	})
	if err != nil {
		return 0, err
	}
	return rows, nil
}

func parseProduct(record []string) (domain.Product, bool) {
	if len(record) < 3 {
		return domain.Product{}, false
	}
	name := strings.TrimSpace(record[0])
	if name == "" {
		return domain.Product{}, false
	}
	price, err := decimal.NewFromString(strings.TrimSpace(record[2]))
	if err != nil || price.IsNegative() {
		log.Printf("skipping product %s: bad price %q", name, record[2])
		return domain.Product{}, false
	}
	p := domain.Product{
		Name:        name,
		Description: strings.TrimSpace(record[1]),
		UnitPrice:   price.Round(2),
	}
	if len(record) > 3 {
		if url := strings.TrimSpace(record[3]); url != "" {
			p.ImageURL = &url
		}
	}
	return p, true
}
