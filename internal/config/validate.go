package config

import (
	"errors"
	"fmt"
	"net"
	"sort"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/spf13/viper"

	"github.com/mithrel/oceannotes/internal/kv"
	"github.com/mithrel/oceannotes/internal/notes"
)

// CheckConfigValidity validates every known key and returns one error listing
// each problem, or nil.
func CheckConfigValidity(v *viper.Viper) error {
	errs := validation.Errors{
		"data_dir":           validation.Validate(v.GetString("data_dir"), validation.Required),
		"storage.key":        validation.Validate(strings.TrimSpace(v.GetString("storage.key")), validation.Required, validation.By(storageKey)),
		"storage.url":        validation.Validate(v.GetString("storage.url"), validation.By(storageURL)),
		"autosave.delay":     validation.Validate(v.GetString("autosave.delay"), validation.By(positiveDuration)),
		"render.max_heading": validation.Validate(v.GetInt("render.max_heading"), validation.Min(1), validation.Max(6)),
		"http_addr":          validation.Validate(v.GetString("http_addr"), validation.Required, validation.By(hostPort)),
		"log.level":          validation.Validate(strings.ToLower(v.GetString("log.level")), validation.In("debug", "info", "warn", "error")),
		"log.format":         validation.Validate(strings.ToLower(v.GetString("log.format")), validation.In("console", "json")),
		"list.sort":          validation.Validate(v.GetString("list.sort"), validation.By(sortMode)),
	}
	if err := errs.Filter(); err != nil {
		return flatten(err)
	}
	return nil
}

// flatten renders validation.Errors as "key: message" lines in key order, so
// the output reads like the rest of the CLI's error text.
func flatten(err error) error {
	var verrs validation.Errors
	if !errors.As(err, &verrs) {
		return err
	}
	keys := make([]string, 0, len(verrs))
	for k := range verrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	msgs := make([]string, 0, len(keys))
	for _, k := range keys {
		msgs = append(msgs, fmt.Sprintf("%s %s", k, verrs[k].Error()))
	}
	return errors.New("invalid config: " + strings.Join(msgs, "; "))
}

func storageURL(value any) error {
	s, _ := value.(string)
	if strings.TrimSpace(s) == "" {
		return nil
	}
	for _, scheme := range kv.Schemes {
		if strings.HasPrefix(s, scheme+"://") {
			return nil
		}
	}
	return fmt.Errorf("must start with one of %s", strings.Join(kv.Schemes, "://, ")+"://")
}

func storageKey(value any) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	if err := kv.ValidateFileKey(s); err != nil {
		return errors.New("must use only letters, digits, '.', '-' and '_' and not start with '.'")
	}
	return nil
}

func positiveDuration(value any) error {
	s, _ := value.(string)
	d, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil {
		return errors.New("must be a duration like 700ms")
	}
	if d <= 0 {
		return errors.New("must be greater than 0")
	}
	return nil
}

func hostPort(value any) error {
	s, _ := value.(string)
	if _, _, err := net.SplitHostPort(s); err != nil {
		return errors.New("must be host:port")
	}
	return nil
}

func sortMode(value any) error {
	s, _ := value.(string)
	if _, err := notes.ParseSortMode(s); err != nil {
		return fmt.Errorf("must be one of %v", notes.SortModes)
	}
	return nil
}
