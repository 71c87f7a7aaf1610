// Package settings holds the per-document slideshow settings and their lifecycle
package settings

import (
	"errors"
	"fmt"
	"maps"
	"strconv"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
)

const (
	KeyInitialized     = "initialized"
	KeySAdvance        = "sAdvance"
	KeySReload         = "sReload"
	KeyMsFade          = "msFade"
	KeyBackgroundColor = "backgroundColor"
	KeyStart           = "start"
	KeyRepeat          = "repeat"
	KeyHideMenu        = "hideMenu"
	KeyHideBands       = "hideBands"
	KeyHideBorders     = "hideBorders"
	KeyPublish         = "publish"
	KeyShortURL        = "shortUrl"
)

// Checkbox values. Only On is true, anything else (including absence) is false.
const (
	On  = "on"
	Off = "off"
)

const (
	True  = "true"
	False = "false"
)

// FormKeys are the nine keys a submitted form overwrites.
var FormKeys = mapset.NewSet(
	KeySAdvance, KeySReload, KeyMsFade, KeyBackgroundColor,
	KeyStart, KeyRepeat, KeyHideMenu, KeyHideBands, KeyHideBorders,
)

// CheckboxKeys are the form keys with on/absent semantics.
var CheckboxKeys = mapset.NewSet(
	KeyStart, KeyRepeat, KeyHideMenu, KeyHideBands, KeyHideBorders,
)

// Settings is the flat key/value mapping stored for a document.
type Settings map[string]string

// Defaults returns the factory settings.
func Defaults() Settings {
	return Settings{
		KeyInitialized:     True,
		KeySAdvance:        "3",
		KeySReload:         "60",
		KeyMsFade:          "1500",
		KeyBackgroundColor: "#ffffff",
		KeyStart:           On,
		KeyRepeat:          On,
		KeyHideMenu:        On,
		KeyHideBands:       On,
		KeyHideBorders:     Off,
	}
}

func (s Settings) Clone() Settings {
	return maps.Clone(s)
}

// Enabled reports whether the checkbox key is on.
func (s Settings) Enabled(key string) bool {
	return s[key] == On
}

// Int parses an integer setting. Unset or malformed values read as 0.
func (s Settings) Int(key string) int {
	v, err := strconv.Atoi(strings.TrimSpace(s[key]))
	if err != nil {
		return 0
	}
	return v
}

// FormValues returns the user-editable subset, as shown in a configuration form.
func (s Settings) FormValues() Settings {
	out := Settings{}
	for key := range FormKeys.Iter() {
		if v, ok := s[key]; ok {
			out[key] = v
		}
	}
	return out
}

// CheckedBoxes reports every checkbox key with its state.
func (s Settings) CheckedBoxes() map[string]bool {
	out := make(map[string]bool, CheckboxKeys.Cardinality())
	for key := range CheckboxKeys.Iter() {
		out[key] = s.Enabled(key)
	}
	return out
}

func (s Settings) Initialized() bool {
	return s[KeyInitialized] == True
}

func (s Settings) Published() bool {
	return s[KeyPublish] == True
}

// Form is a submitted configuration form. Checkboxes are plain booleans: a box
// missing from the submission must already have been turned into false.
type Form struct {
	SAdvance        string
	SReload         string
	MsFade          string
	BackgroundColor string

	Start       bool
	Repeat      bool
	HideMenu    bool
	HideBands   bool
	HideBorders bool
}

var (
	ErrInvalidSAdvance        = errors.New("sAdvance must be a positive integer")
	ErrInvalidSReload         = errors.New("sReload must be a positive integer")
	ErrInvalidMsFade          = errors.New("msFade must be a non-negative integer")
	ErrInvalidBackgroundColor = errors.New("backgroundColor is required")
)

func (f Form) Validate() error {
	if n, err := strconv.Atoi(f.SAdvance); err != nil || n <= 0 {
		return fmt.Errorf("%w, got %q", ErrInvalidSAdvance, f.SAdvance)
	}
	if n, err := strconv.Atoi(f.SReload); err != nil || n <= 0 {
		return fmt.Errorf("%w, got %q", ErrInvalidSReload, f.SReload)
	}
	if n, err := strconv.Atoi(f.MsFade); err != nil || n < 0 {
		return fmt.Errorf("%w, got %q", ErrInvalidMsFade, f.MsFade)
	}
	if strings.TrimSpace(f.BackgroundColor) == "" {
		return ErrInvalidBackgroundColor
	}
	return nil
}

// Values splits the form into keys to write and checkbox keys to clear.
func (f Form) Values() (set Settings, cleared []string) {
	set = Settings{
		KeySAdvance:        f.SAdvance,
		KeySReload:         f.SReload,
		KeyMsFade:          f.MsFade,
		KeyBackgroundColor: f.BackgroundColor,
	}
	checkboxes := []struct {
		key     string
		checked bool
	}{
		{KeyStart, f.Start},
		{KeyRepeat, f.Repeat},
		{KeyHideMenu, f.HideMenu},
		{KeyHideBands, f.HideBands},
		{KeyHideBorders, f.HideBorders},
	}
	for _, cb := range checkboxes {
		if cb.checked {
			set[cb.key] = On
		} else {
			cleared = append(cleared, cb.key)
		}
	}
	return set, cleared
}

// Checked converts an optional submitted checkbox value into a boolean.
// Browsers send "on" for a checked box without a value attribute and drop
// unchecked boxes entirely.
func Checked(value *string) bool {
	if value == nil {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(*value)) {
	case On, True, "1":
		return true
	}
	return false
}
