package engine

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// ExportState captures score, inventory, every materialized cache (empty
// ones included) and the path history
func (e *GameEngine) ExportState() *Record {
	cacheCoins := make(map[string][]Coin, e.world.Len())
	for cell, coins := range e.world.caches {
		cacheCoins[cell.Key()] = cloneCoins(coins)
	}

	return &Record{
		PlayerPoints:    e.score,
		PlayerInventory: e.inventory.Coins(),
		CacheCoins:      cacheCoins,
		PlayerPath:      e.GetPath(),
	}
}

// ImportState replaces the engine state with record. A nil record or a
// negative score is rejected with ErrMalformedRecord and leaves the engine
// untouched. Entries that cannot be applied (bad cell keys, negative
// serials, invalid coordinates) are skipped. Coin identities are taken as
// stored: after an undo the same coin can sit in a cache and in the
// inventory, and both copies survive the import.
func (e *GameEngine) ImportState(record *Record) error {
	if record == nil {
		return fmt.Errorf("%w: record is nil", ErrMalformedRecord)
	}
	if record.PlayerPoints < 0 {
		return fmt.Errorf("%w: %s is negative", ErrMalformedRecord, FieldPlayerPoints)
	}

	keys := make([]string, 0, len(record.CacheCoins))
	for key := range record.CacheCoins {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	mapping := make(map[GridCell][]Coin, len(keys))
	for _, key := range keys {
		cell, err := ParseCellKey(key)
		if err != nil {
			continue
		}
		if _, dup := mapping[cell]; dup {
			continue
		}
		coins := make([]Coin, 0, len(record.CacheCoins[key]))
		for _, coin := range record.CacheCoins[key] {
			if coin.Serial >= 0 {
				coins = append(coins, coin)
			}
		}
		mapping[cell] = coins
	}

	inventory := make([]Coin, 0, len(record.PlayerInventory))
	for _, coin := range record.PlayerInventory {
		if coin.Serial >= 0 {
			inventory = append(inventory, coin)
		}
	}

	path := make([]LatLng, 0, len(record.PlayerPath))
	for _, p := range record.PlayerPath {
		if ValidLatLng(p) {
			path = append(path, p)
		}
	}
	if len(path) == 0 {
		path = append(path, e.config.Start)
	}

	e.world.Replace(mapping)
	e.inventory.Replace(inventory)
	e.caretaker.Clear()
	e.caretaker.Save(mapping)
	e.score = record.PlayerPoints
	e.path = path
	e.position = path[len(path)-1]
	e.moves = len(path) - 1
	if e.score > 0 {
		e.message = fmt.Sprintf(e.config.Messages.Points, e.score)
	} else {
		e.message = e.config.Messages.Welcome
	}

	return nil
}

// EncodeRecord serializes each record field separately, keyed by field
// name, for key-value stores
func EncodeRecord(record *Record) (map[string][]byte, error) {
	if record == nil {
		return nil, fmt.Errorf("%w: record is nil", ErrMalformedRecord)
	}

	values := map[string]any{
		FieldPlayerPoints:    record.PlayerPoints,
		FieldPlayerInventory: nonNilCoins(record.PlayerInventory),
		FieldCacheCoins:      nonNilMapping(record.CacheCoins),
		FieldPlayerPath:      nonNilPath(record.PlayerPath),
	}

	fields := make(map[string][]byte, len(values))
	for name, value := range values {
		data, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s: %w", name, err)
		}
		fields[name] = data
	}
	return fields, nil
}

// DecodeRecordJSON decodes a whole record document
func DecodeRecordJSON(data []byte) (*Record, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}

	fields := make(map[string][]byte, len(raw))
	for name, value := range raw {
		fields[name] = value
	}
	return DecodeRecord(fields)
}

// DecodeRecord decodes record fields stored under their field names.
// Missing fields keep their defaults. A field whose top-level shape is
// wrong rejects the whole record. Individual coins, cache entries and path
// points that cannot be parsed are skipped.
//
// cacheCoins is accepted either as an object keyed by cell or as a list of
// [key, coins] pairs.
func DecodeRecord(fields map[string][]byte) (*Record, error) {
	record := &Record{
		PlayerInventory: []Coin{},
		CacheCoins:      map[string][]Coin{},
		PlayerPath:      []LatLng{},
	}

	if raw, ok := present(fields, FieldPlayerPoints); ok {
		if err := json.Unmarshal(raw, &record.PlayerPoints); err != nil {
			return nil, malformed(FieldPlayerPoints, err)
		}
		if record.PlayerPoints < 0 {
			return nil, fmt.Errorf("%w: %s is negative", ErrMalformedRecord, FieldPlayerPoints)
		}
	}

	if raw, ok := present(fields, FieldPlayerInventory); ok {
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, malformed(FieldPlayerInventory, err)
		}
		record.PlayerInventory = decodeCoins(items)
	}

	if raw, ok := present(fields, FieldCacheCoins); ok {
		caches, err := decodeCacheCoins(raw)
		if err != nil {
			return nil, malformed(FieldCacheCoins, err)
		}
		record.CacheCoins = caches
	}

	if raw, ok := present(fields, FieldPlayerPath); ok {
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, malformed(FieldPlayerPath, err)
		}
		for _, item := range items {
			if p, ok := decodeLatLng(item); ok {
				record.PlayerPath = append(record.PlayerPath, p)
			}
		}
	}

	return record, nil
}

func present(fields map[string][]byte, name string) ([]byte, bool) {
	raw, ok := fields[name]
	if !ok {
		return nil, false
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, false
	}
	return raw, true
}

func malformed(field string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrMalformedRecord, field, err)
}

func decodeCacheCoins(raw []byte) (map[string][]Coin, error) {
	caches := map[string][]Coin{}

	switch raw[0] {
	case '{':
		var entries map[string]json.RawMessage
		if err := json.Unmarshal(raw, &entries); err != nil {
			return nil, err
		}
		for key, value := range entries {
			cell, err := ParseCellKey(key)
			if err != nil {
				continue
			}
			var items []json.RawMessage
			if err := json.Unmarshal(value, &items); err != nil {
				continue
			}
			caches[cell.Key()] = decodeCoins(items)
		}

	case '[':
		var entries []json.RawMessage
		if err := json.Unmarshal(raw, &entries); err != nil {
			return nil, err
		}
		for _, entry := range entries {
			var pair []json.RawMessage
			if err := json.Unmarshal(entry, &pair); err != nil || len(pair) != 2 {
				continue
			}
			var key string
			if err := json.Unmarshal(pair[0], &key); err != nil {
				continue
			}
			cell, err := ParseCellKey(key)
			if err != nil {
				continue
			}
			if _, dup := caches[cell.Key()]; dup {
				continue
			}
			var items []json.RawMessage
			if err := json.Unmarshal(pair[1], &items); err != nil {
				continue
			}
			caches[cell.Key()] = decodeCoins(items)
		}

	default:
		return nil, fmt.Errorf("expected an object or a list of entries")
	}

	return caches, nil
}

func decodeCoins(items []json.RawMessage) []Coin {
	coins := make([]Coin, 0, len(items))
	for _, item := range items {
		if coin, ok := decodeCoin(item); ok {
			coins = append(coins, coin)
		}
	}
	return coins
}

func decodeCoin(raw json.RawMessage) (Coin, bool) {
	var wire struct {
		Original *struct {
			I *int `json:"i"`
			J *int `json:"j"`
		} `json:"original"`
		Serial *int `json:"serial"`
	}
	if err := json.Unmarshal(raw, &wire); err != nil {
		return Coin{}, false
	}
	if wire.Original == nil || wire.Original.I == nil || wire.Original.J == nil || wire.Serial == nil {
		return Coin{}, false
	}
	if *wire.Serial < 0 {
		return Coin{}, false
	}
	return Coin{
		Original: GridCell{I: *wire.Original.I, J: *wire.Original.J},
		Serial:   *wire.Serial,
	}, true
}

func decodeLatLng(raw json.RawMessage) (LatLng, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return LatLng{}, false
	}

	var p LatLng
	if raw[0] == '[' {
		var pair []float64
		if err := json.Unmarshal(raw, &pair); err != nil || len(pair) != 2 {
			return LatLng{}, false
		}
		p = LatLng{Lat: pair[0], Lng: pair[1]}
	} else {
		var wire struct {
			Lat *float64 `json:"lat"`
			Lng *float64 `json:"lng"`
		}
		if err := json.Unmarshal(raw, &wire); err != nil || wire.Lat == nil || wire.Lng == nil {
			return LatLng{}, false
		}
		p = LatLng{Lat: *wire.Lat, Lng: *wire.Lng}
	}

	if !ValidLatLng(p) {
		return LatLng{}, false
	}
	return p, true
}

func nonNilCoins(coins []Coin) []Coin {
	if coins == nil {
		return []Coin{}
	}
	return coins
}

func nonNilMapping(mapping map[string][]Coin) map[string][]Coin {
	out := make(map[string][]Coin, len(mapping))
	for key, coins := range mapping {
		out[key] = nonNilCoins(coins)
	}
	return out
}

func nonNilPath(path []LatLng) []LatLng {
	if path == nil {
		return []LatLng{}
	}
	return path
}
