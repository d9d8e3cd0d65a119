package models

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"
)

// teamStatsFieldMap caches JSON tag -> struct field index mappings
var (
	teamStatsFieldMap     map[string]int
	teamStatsFieldMapOnce sync.Once
)

func getTeamStatsFieldMap() map[string]int {
	teamStatsFieldMapOnce.Do(func() {
		t := reflect.TypeOf(TeamStats{})
		teamStatsFieldMap = make(map[string]int, t.NumField())
		for i := 0; i < t.NumField(); i++ {
			tag := t.Field(i).Tag.Get("json")
			if tag == "" || tag == "-" {
				continue
			}
			name := strings.Split(tag, ",")[0]
			teamStatsFieldMap[name] = i
		}
	})
	return teamStatsFieldMap
}

// UnmarshalJSON accepts both native JSON numbers and string-encoded numbers.
// Scraped stat feeds often quote every value ("wins": "12"); those are coerced
// to the field's Go type. Recent form may also arrive as a single "WWLWL" string.
func (s *TeamStats) UnmarshalJSON(data []byte) error {
	type Alias TeamStats
	a := (*Alias)(s)

	if err := json.Unmarshal(data, a); err == nil {
		return nil
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("flex unmarshal team stats: %w", err)
	}

	fieldMap := getTeamStatsFieldMap()
	v := reflect.ValueOf(a).Elem()

	for key, rawVal := range raw {
		idx, ok := fieldMap[key]
		if !ok {
			continue
		}

		fv := v.Field(idx)
		if !fv.CanSet() {
			continue
		}

		ptr := reflect.New(fv.Type())
		if err := json.Unmarshal(rawVal, ptr.Interface()); err == nil {
			fv.Set(ptr.Elem())
			continue
		}

		if len(rawVal) < 2 || rawVal[0] != '"' {
			return fmt.Errorf("field %s: cannot decode %s", key, rawVal)
		}
		var str string
		if err := json.Unmarshal(rawVal, &str); err != nil {
			return fmt.Errorf("field %s: %w", key, err)
		}
		if str == "" {
			continue
		}
		if err := coerceStringToField(fv, str); err != nil {
			return fmt.Errorf("field %s: %w", key, err)
		}
	}

	return nil
}

// UnmarshalJSON accepts quoted counts inside home/away splits
func (r *Record) UnmarshalJSON(data []byte) error {
	var raw struct {
		Wins   json.RawMessage `json:"wins"`
		Losses json.RawMessage `json:"losses"`
		Ties   json.RawMessage `json:"ties"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("record: %w", err)
	}

	var out Record
	for _, f := range []struct {
		name string
		raw  json.RawMessage
		dst  *int
	}{
		{"wins", raw.Wins, &out.Wins},
		{"losses", raw.Losses, &out.Losses},
		{"ties", raw.Ties, &out.Ties},
	} {
		n, err := flexInt(f.raw)
		if err != nil {
			return fmt.Errorf("record %s: %w", f.name, err)
		}
		*f.dst = n
	}
	*r = out
	return nil
}

// flexInt reads a JSON number or quoted number; absent, null and "" are 0
func flexInt(raw json.RawMessage) (int, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, nil
	}
	text := string(raw)
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &text); err != nil {
			return 0, err
		}
		if strings.TrimSpace(text) == "" {
			return 0, nil
		}
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// coerceStringToField converts a string value to the field's native type.
func coerceStringToField(fv reflect.Value, s string) error {
	switch fv.Kind() {
	case reflect.Float64:
		n, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return err
		}
		fv.SetFloat(n)
	case reflect.Int:
		n, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return err
		}
		fv.SetInt(int64(n))
	case reflect.Ptr:
		if fv.Type().Elem().Kind() != reflect.Float64 {
			return fmt.Errorf("unsupported type %s", fv.Type())
		}
		n, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return err
		}
		fv.Set(reflect.ValueOf(&n))
	case reflect.Slice:
		// "WWLWL" -> ["W","W","L","W","L"]
		if fv.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("unsupported type %s", fv.Type())
		}
		form := make([]string, 0, len(s))
		for _, r := range strings.ToUpper(s) {
			if r == 'W' || r == 'L' {
				form = append(form, string(r))
			}
		}
		fv.Set(reflect.ValueOf(form))
	default:
		return fmt.Errorf("unsupported type %s", fv.Type())
	}
	return nil
}
