package event

import "testing"

func TestModsString(t *testing.T) {
	cases := []struct {
		mods Mods
		want string
	}{
		{0, ""},
		{ModCtrl, "ctrl"},
		{ModShift | ModCtrl, "ctrl+shift"},
		{ModSuper | ModAlt | ModShift | ModCtrl, "ctrl+alt+shift+super"},
	}
	for _, tc := range cases {
		if got := tc.mods.String(); got != tc.want {
			t.Fatalf("Mods(%d).String() = %q, want %q", tc.mods, got, tc.want)
		}
	}
}

func TestDescribe(t *testing.T) {
	cases := []struct {
		ev   Event
		want string
	}{
		{WindowResize{Width: 640, Height: 480}, "resize 640x480"},
		{WindowClose{}, "close"},
		{WindowFocus{Focused: false}, "focus out"},
		{KeyDown{Name: "a", Mods: ModCtrl}, "key down ctrl+a"},
		{KeyUp{Name: "Escape"}, "key up Escape"},
		{MouseDown{Button: ButtonRight, X: 3, Y: 4}, "mouse down right at 3,4"},
		{MouseMove{X: 10, Y: 20}, "mouse move 10,20"},
		{nil, "<nil>"},
		{42, "int"},
	}
	for _, tc := range cases {
		if got := Describe(tc.ev); got != tc.want {
			t.Fatalf("Describe(%#v) = %q, want %q", tc.ev, got, tc.want)
		}
	}
}

func TestButtonString_Unknown(t *testing.T) {
	if got := Button(9).String(); got != "button9" {
		t.Fatalf("expected button9, got %q", got)
	}
}
