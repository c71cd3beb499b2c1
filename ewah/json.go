package ewah

import (
	"fmt"

	"github.com/goccy/go-json"
)

// jsonBitmap is the JSON form: the logical size and the set positions.
type jsonBitmap struct {
	SizeInBits uint64   `json:"sizeInBits"`
	Positions  []uint64 `json:"positions"`
}

// MarshalJSON implements json.Marshaler.
func (b *Bitmap) MarshalJSON() ([]byte, error) {
	positions := b.Positions()
	if positions == nil {
		positions = []uint64{}
	}
	return json.Marshal(jsonBitmap{
		SizeInBits: b.sizeInBits,
		Positions:  positions,
	})
}

// UnmarshalJSON implements json.Unmarshaler. Positions must be strictly
// increasing and below sizeInBits.
func (b *Bitmap) UnmarshalJSON(data []byte) error {
	var jb jsonBitmap
	if err := json.Unmarshal(data, &jb); err != nil {
		return err
	}

	decoded := New()
	for _, p := range jb.Positions {
		if err := decoded.Set(p); err != nil {
			return err
		}
	}
	if !decoded.SetSizeInBits(jb.SizeInBits) {
		return fmt.Errorf("sizeInBits %d does not cover position %d: %w",
			jb.SizeInBits, decoded.sizeInBits-1, ErrInvalidFormat)
	}
	*b = *decoded
	return nil
}
