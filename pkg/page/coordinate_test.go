package page

import (
	"net/http"
	"testing"

	"github.com/devicelab-dev/pagekit/pkg/config"
	"github.com/devicelab-dev/pagekit/pkg/webdriver"
)

func TestResolveArea(t *testing.T) {
	setTestDefaults(t)
	p := newTestPage(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	tests := []struct {
		name    string
		area    config.Area
		want    webdriver.Rect
		wantErr bool
	}{
		{
			name: "full window",
			area: config.FullWindow,
			want: webdriver.Rect{X: 0, Y: 0, Width: 1080, Height: 1920},
		},
		{
			name: "relative sub area",
			area: config.Area{X: 0.1, Y: 0.2, Width: 0.6, Height: 0.7},
			want: webdriver.Rect{X: 108, Y: 384, Width: 648, Height: 1344},
		},
		{
			name: "absolute area",
			area: config.AbsArea(100, 150, 300, 700),
			want: webdriver.Rect{X: 100, Y: 150, Width: 300, Height: 700},
		},
		{
			name:    "relative origin out of range",
			area:    config.Area{X: 1.2, Y: 0, Width: 0.5, Height: 0.5},
			wantErr: true,
		},
		{
			name:    "relative zero size",
			area:    config.Area{X: 0, Y: 0, Width: 0, Height: 0.5},
			wantErr: true,
		},
		{
			name:    "absolute zero size",
			area:    config.AbsArea(10, 10, 0, 100),
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolveArea(p.Driver(), tt.area)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Expected an error, got %+v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("resolveArea failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("Expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestResolveOffset(t *testing.T) {
	area := webdriver.Rect{X: 100, Y: 200, Width: 400, Height: 1000}

	tests := []struct {
		name       string
		offset     config.Offset
		wantStart  webdriver.Point
		wantEnd    webdriver.Point
		wantErr    bool
	}{
		{
			name:      "relative up stroke",
			offset:    config.Up,
			wantStart: webdriver.Point{X: 300, Y: 950},
			wantEnd:   webdriver.Point{X: 300, Y: 450},
		},
		{
			name:      "absolute stroke ignores area",
			offset:    config.AbsOffset(250, 300, 400, 700),
			wantStart: webdriver.Point{X: 250, Y: 300},
			wantEnd:   webdriver.Point{X: 400, Y: 700},
		},
		{
			name:    "relative out of range",
			offset:  config.Offset{StartX: 0.5, StartY: 1.5, EndX: 0.5, EndY: 0.2},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sx, sy, ex, ey, err := resolveOffset(tt.offset, area)
			if tt.wantErr {
				if err == nil {
					t.Fatal("Expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("resolveOffset failed: %v", err)
			}
			if sx != tt.wantStart.X || sy != tt.wantStart.Y || ex != tt.wantEnd.X || ey != tt.wantEnd.Y {
				t.Errorf("Expected (%d,%d)->(%d,%d), got (%d,%d)->(%d,%d)",
					tt.wantStart.X, tt.wantStart.Y, tt.wantEnd.X, tt.wantEnd.Y, sx, sy, ex, ey)
			}
		})
	}
}
