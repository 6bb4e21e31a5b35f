package useragents

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"

	nperrors "github.com/maksimkurb/netpolicy/src/internal/errors"
	"github.com/maksimkurb/netpolicy/src/internal/log"
)

type document struct {
	UserAgents []map[string]any `toml:"user_agent"`
}

type record struct {
	Identifier string `validate:"required,useragent_id"`
	Title      string
	Value      string `validate:"required"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
	if err := validate.RegisterValidation("useragent_id", func(fl validator.FieldLevel) bool {
		return IsValidIdentifier(fl.Field().String())
	}); err != nil {
		panic(err)
	}
}

// Load reads a user-agent resource from path. See Parse.
func Load(path string) (*Table, []error, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return NewTable(), nil, nperrors.NewConfigError(fmt.Sprintf("failed to read user agents file %s", path), err)
	}
	table, skipped, err := Parse(content)
	if err != nil {
		return table, skipped, err
	}
	log.Debugf("Loaded %d user agent(s) from %s", table.Len(), path)
	return table, skipped, nil
}

// Parse builds a table from TOML content:
//
//	[[user_agent]]
//	identifier = "firefox"
//	title = "Firefox 128"
//	value = "Mozilla/5.0 ({{platform}}; rv:128.0) Gecko/20100101 Firefox/128.0"
//
// Malformed records are skipped and returned as MALFORMED_USER_AGENT errors;
// the load continues. For duplicate identifiers the first record wins. A
// record with identifier "default" replaces the built-in default value but
// keeps it at the first position. Only an unreadable document is an error,
// in which case the returned table holds just the default.
func Parse(content []byte) (*Table, []error, error) {
	table := NewTable()

	var doc document
	if err := toml.Unmarshal(content, &doc); err != nil {
		return table, nil, nperrors.NewConfigError("failed to parse user agents", err)
	}

	var skipped []error
	defaultOverridden := false

	for i, raw := range doc.UserAgents {
		rec, err := decodeRecord(raw)
		if err != nil {
			skipped = append(skipped, skip(i, err))
			continue
		}

		if rec.Identifier == DefaultIdentifier {
			if defaultOverridden {
				skipped = append(skipped, skip(i, fmt.Errorf("duplicate identifier %q", rec.Identifier)))
				continue
			}
			defaultOverridden = true
			table.byID[DefaultIdentifier] = Info(rec)
			continue
		}

		if _, exists := table.byID[rec.Identifier]; exists {
			skipped = append(skipped, skip(i, fmt.Errorf("duplicate identifier %q", rec.Identifier)))
			continue
		}

		table.order = append(table.order, rec.Identifier)
		table.byID[rec.Identifier] = Info(rec)
	}

	return table, skipped, nil
}

func decodeRecord(raw map[string]any) (record, error) {
	var rec record
	fields := map[string]*string{
		"identifier": &rec.Identifier,
		"title":      &rec.Title,
		"value":      &rec.Value,
	}

	for key, value := range raw {
		target, ok := fields[key]
		if !ok {
			return rec, fmt.Errorf("unknown field %q", key)
		}
		s, ok := value.(string)
		if !ok {
			return rec, fmt.Errorf("field %q must be a string, got %T", key, value)
		}
		*target = s
	}

	if err := validate.Struct(rec); err != nil {
		return rec, err
	}
	if rec.Title == "" {
		rec.Title = rec.Identifier
	}
	return rec, nil
}

func skip(index int, cause error) error {
	err := nperrors.NewMalformedUserAgentError(fmt.Sprintf("user agent record %d skipped", index), cause)
	log.Warnf("%v", err)
	return err
}
