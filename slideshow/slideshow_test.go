package slideshow

import (
	"errors"
	"testing"

	"github.com/aouyang1/autoslides/settings"
)

func TestGenerateDefaults(t *testing.T) {
	p, err := Generate(settings.Defaults(), DefaultGeometry, 960, 540)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	want := Params{
		Start:           true,
		Repeat:          true,
		MsAdvance:       3000,
		MsFade:          1500,
		MsReload:        60000,
		BackgroundColor: "#ffffff",
		TopInset:        0,
		BottomInset:     28,
		SideInset:       26,
		AspectRatio:     56.25,
	}
	if p != want {
		t.Errorf("Generate = %+v\nwant %+v", p, want)
	}
}

func TestGenerateInsets(t *testing.T) {
	tests := []struct {
		name       string
		s          settings.Settings
		wantTop    float64
		wantBottom float64
		wantSide   float64
	}{
		{
			name: "nothing hidden",
			s:    settings.Settings{},
		},
		{
			name:       "menu only",
			s:          settings.Settings{settings.KeyHideMenu: settings.On, settings.KeyHideBorders: settings.Off},
			wantBottom: 28,
		},
		{
			name:       "menu and borders",
			s:          settings.Settings{settings.KeyHideMenu: settings.On, settings.KeyHideBorders: settings.On},
			wantTop:    2,
			wantBottom: 30,
		},
		{
			name:     "bands only",
			s:        settings.Settings{settings.KeyHideBands: settings.On},
			wantSide: 26,
		},
		{
			name:     "bands and borders",
			s:        settings.Settings{settings.KeyHideBands: settings.On, settings.KeyHideBorders: settings.On},
			wantTop:  2,
			wantSide: 28, // ceil(25.33 + 2)
		},
		{
			name:    "borders only",
			s:       settings.Settings{settings.KeyHideBorders: settings.On},
			wantTop: 2,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Generate(tt.s, DefaultGeometry, 960, 540)
			if err != nil {
				t.Fatalf("Generate: %v", err)
			}
			if p.TopInset != tt.wantTop {
				t.Errorf("TopInset = %v, want %v", p.TopInset, tt.wantTop)
			}
			if p.BottomInset != tt.wantBottom {
				t.Errorf("BottomInset = %v, want %v", p.BottomInset, tt.wantBottom)
			}
			if p.SideInset != tt.wantSide {
				t.Errorf("SideInset = %v, want %v", p.SideInset, tt.wantSide)
			}
		})
	}
}

func TestGenerateSideInsetFollowsAspectRatio(t *testing.T) {
	s := settings.Settings{settings.KeyHideBands: settings.On}
	tests := []struct {
		width, height float64
		wantRatio     float64
		wantSide      float64
	}{
		{960, 540, 56.25, 26}, // 16:9, ceil(25.33)
		{720, 405, 56.25, 26}, // same ratio in points
		{800, 600, 75, 19},    // 4:3, 1425/75 = 19 exactly
		{1000, 625, 62.5, 23}, // 16:10, ceil(22.8)
		{400, 400, 100, 15},   // square, ceil(14.25)
	}
	for _, tt := range tests {
		p, err := Generate(s, DefaultGeometry, tt.width, tt.height)
		if err != nil {
			t.Fatalf("Generate(%v, %v): %v", tt.width, tt.height, err)
		}
		if p.AspectRatio != tt.wantRatio {
			t.Errorf("%vx%v AspectRatio = %v, want %v", tt.width, tt.height, p.AspectRatio, tt.wantRatio)
		}
		if p.SideInset != tt.wantSide {
			t.Errorf("%vx%v SideInset = %v, want %v", tt.width, tt.height, p.SideInset, tt.wantSide)
		}
	}
}

func TestGenerateTimings(t *testing.T) {
	s := settings.Settings{
		settings.KeySAdvance:        "10",
		settings.KeySReload:         "300",
		settings.KeyMsFade:          "250",
		settings.KeyBackgroundColor: "rgb(0, 0, 0)",
		settings.KeyStart:           "off",
		settings.KeyRepeat:          settings.On,
	}
	p, err := Generate(s, DefaultGeometry, 960, 540)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if p.MsAdvance != 10000 || p.MsReload != 300000 || p.MsFade != 250 {
		t.Errorf("timings = %d/%d/%d, want 10000/300000/250", p.MsAdvance, p.MsReload, p.MsFade)
	}
	if p.BackgroundColor != "rgb(0, 0, 0)" {
		t.Errorf("BackgroundColor = %q", p.BackgroundColor)
	}
	if p.Start {
		t.Error("Start = true for a value other than on")
	}
	if !p.Repeat {
		t.Error("Repeat = false, want true")
	}
}

func TestGenerateIsPure(t *testing.T) {
	s := settings.Defaults()
	s[settings.KeyHideBorders] = settings.On
	before := s.Clone()

	first, err := Generate(s, DefaultGeometry, 720, 405)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	for range 10 {
		again, err := Generate(s, DefaultGeometry, 720, 405)
		if err != nil {
			t.Fatalf("Generate: %v", err)
		}
		if again != first {
			t.Fatalf("Generate not deterministic: %+v vs %+v", again, first)
		}
	}
	for k, v := range before {
		if s[k] != v {
			t.Errorf("Generate mutated %s: %q -> %q", k, v, s[k])
		}
	}
}

func TestGenerateCustomGeometry(t *testing.T) {
	s := settings.Settings{
		settings.KeyHideMenu:    settings.On,
		settings.KeyHideBorders: settings.On,
	}
	p, err := Generate(s, Geometry{BorderInset: 1.5, BottomInset: 30, MagicRatio: 14.25}, 960, 540)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if p.TopInset != 1.5 || p.BottomInset != 32 {
		t.Errorf("insets = %v/%v, want 1.5/32", p.TopInset, p.BottomInset)
	}
}

func TestGenerateRejectsEmptyPage(t *testing.T) {
	for _, dims := range [][2]float64{{0, 540}, {960, 0}, {-1, 540}} {
		if _, err := Generate(settings.Defaults(), DefaultGeometry, dims[0], dims[1]); !errors.Is(err, ErrInvalidPageSize) {
			t.Errorf("Generate(%v) err = %v, want ErrInvalidPageSize", dims, err)
		}
	}
}
