package main

import (
	"testing"

	"github.com/vovakirdan/logic-reflect/internal/puzzle"
)

func TestParsePlacement(t *testing.T) {
	tests := []struct {
		in      string
		want    placement
		wantErr bool
	}{
		{in: "4,1,rotator-cw", want: placement{at: puzzle.C(4, 1), kind: puzzle.ToolRotateCW}},
		{in: "0, 2, ccw", want: placement{at: puzzle.C(0, 2), kind: puzzle.ToolRotateCCW}},
		{in: "3,3,M", want: placement{at: puzzle.C(3, 3), kind: puzzle.ToolMirror}},
		{in: "3,3", wantErr: true},
		{in: "a,1,mirror", wantErr: true},
		{in: "1,1,teleporter", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parsePlacement(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Errorf("parsePlacement(%q) = %+v, expected an error", tt.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("parsePlacement(%q): %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("parsePlacement(%q) = %+v, expected %+v", tt.in, got, tt.want)
			}
		})
	}
}
