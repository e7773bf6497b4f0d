package color

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseColor(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		want    HSV
		wantErr error
	}{
		{"full", "120,10,200", HSV{120, 10, 200}, nil},
		{"hue at max", "359,0,255", HSV{359, 0, 255}, nil},
		{"hue above max", "360,0,255", HSV{}, ErrComponentRange},
		{"saturation above max", "10,256,0", HSV{}, ErrComponentRange},
		{"value above max", "10,0,256", HSV{}, ErrComponentRange},
		{"negative wraps and fails", "-1,0,0", HSV{}, ErrComponentRange},
		{"empty value", "10,20,", HSV{10, 20, 0}, nil},
		{"missing value", "10,20", HSV{}, ErrMissingComponent},
		{"missing saturation", "10", HSV{}, ErrMissingComponent},
		{"empty", "", HSV{}, ErrMissingComponent},
		{"trailing garbage", "1,2,3,4", HSV{1, 2, 3}, nil},
		{"spaces", " 1, 2, 3", HSV{1, 2, 3}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultPalette()
			err := p.ParseColor(3, tt.text)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, p[3])
			// neighbours untouched
			assert.Equal(t, Red, p[IDRed])
			assert.Equal(t, Yellow, p[IDYellow])
		})
	}
}

func TestParseColor_IndexOutOfRange(t *testing.T) {
	p := DefaultPalette()
	before := *p
	assert.ErrorIs(t, p.ParseColor(PaletteSize, "1,2,3"), ErrIndexOutOfRange)
	assert.ErrorIs(t, p.ParseColor(-1, "1,2,3"), ErrIndexOutOfRange)
	assert.Equal(t, before, *p)
}

func TestFormatColor_RoundTrip(t *testing.T) {
	p := DefaultPalette()
	for i := range p {
		text := p.FormatColor(i)
		q := &Palette{}
		assert.NoError(t, q.ParseColor(i, text), text)
		assert.Equal(t, p[i], q[i], text)
	}
	assert.Equal(t, "30,0,255", Orange.String())
}

func TestFormatColor_IndexOutOfRange(t *testing.T) {
	p := DefaultPalette()
	assert.Equal(t, "", p.FormatColor(PaletteSize))
	assert.Equal(t, "", p.FormatColor(-1))
}
