package market_hours

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/aristath/trendly/internal/domain"
	"github.com/aristath/trendly/pkg/embedded"
)

var requiredColumns = []string{"code", "currency", "timezone", "open", "close"}

// Registry is the read-only table of known exchanges.
// Built once at startup; safe for concurrent reads.
type Registry struct {
	exchanges map[string]domain.ExchangeInfo
}

// NewRegistry creates a registry from already-validated exchange definitions
func NewRegistry(infos []domain.ExchangeInfo) *Registry {
	exchanges := make(map[string]domain.ExchangeInfo, len(infos))
	for _, info := range infos {
		exchanges[info.Code] = info
	}
	return &Registry{exchanges: exchanges}
}

// LoadRegistry parses an exchange table in CSV form.
// Any malformed row fails the whole load.
func LoadRegistry(r io.Reader) (*Registry, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("exchange table is empty")
		}
		return nil, fmt.Errorf("failed to read exchange table header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, name := range requiredColumns {
		if _, ok := columns[name]; !ok {
			return nil, fmt.Errorf("exchange table missing column %q", name)
		}
	}

	var infos []domain.ExchangeInfo
	seen := make(map[string]bool)
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read exchange table: %w", err)
		}

		info, err := parseExchangeRow(record, columns)
		if err != nil {
			return nil, fmt.Errorf("exchange table line %d: %w", line, err)
		}
		if seen[info.Code] {
			return nil, fmt.Errorf("exchange table line %d: duplicate exchange %q", line, info.Code)
		}
		seen[info.Code] = true
		infos = append(infos, info)
	}

	if len(infos) == 0 {
		return nil, fmt.Errorf("exchange table has no rows")
	}

	return NewRegistry(infos), nil
}

// LoadRegistryFile loads the exchange table from path, or the embedded table when path is empty
func LoadRegistryFile(path string) (*Registry, error) {
	if path == "" {
		return LoadRegistry(bytes.NewReader(embedded.ExchangesCSV))
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open exchange table: %w", err)
	}
	defer f.Close()

	return LoadRegistry(f)
}

func parseExchangeRow(record []string, columns map[string]int) (domain.ExchangeInfo, error) {
	field := func(name string) string {
		idx := columns[name]
		if idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	code := field("code")
	if code == "" {
		return domain.ExchangeInfo{}, fmt.Errorf("empty exchange code")
	}

	currency := strings.ToUpper(field("currency"))
	if len(currency) != 3 {
		return domain.ExchangeInfo{}, fmt.Errorf("exchange %s: invalid currency %q", code, currency)
	}

	loc, err := time.LoadLocation(field("timezone"))
	if err != nil {
		return domain.ExchangeInfo{}, fmt.Errorf("exchange %s: invalid timezone: %w", code, err)
	}

	open, err := domain.ParseClockTime(field("open"))
	if err != nil {
		return domain.ExchangeInfo{}, fmt.Errorf("exchange %s: %w", code, err)
	}
	closeAt, err := domain.ParseClockTime(field("close"))
	if err != nil {
		return domain.ExchangeInfo{}, fmt.Errorf("exchange %s: %w", code, err)
	}

	return domain.ExchangeInfo{
		Code:     code,
		Currency: domain.Currency(currency),
		Timezone: loc,
		Open:     open,
		Close:    closeAt,
	}, nil
}

// Resolve returns the exchange registered under code
func (r *Registry) Resolve(code string) (domain.ExchangeInfo, error) {
	info, ok := r.exchanges[code]
	if !ok {
		return domain.ExchangeInfo{}, fmt.Errorf("%w: %q", domain.ErrUnknownExchange, code)
	}
	return info, nil
}

// Codes returns all registered exchange codes in sorted order
func (r *Registry) Codes() []string {
	codes := make([]string, 0, len(r.exchanges))
	for code := range r.exchanges {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Len returns the number of registered exchanges
func (r *Registry) Len() int {
	return len(r.exchanges)
}
