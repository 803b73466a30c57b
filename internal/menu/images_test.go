package menu

import "testing"

func TestImageResolver(t *testing.T) {
	resolver := NewImageResolver(nil)

	cases := []struct {
		name   string
		want   string
		wantOK bool
	}{
		{name: "Margherita Pizza", want: "/images/dishes/margherita-pizza.jpg", wantOK: true},
		{name: "  TIRAMISU ", want: "/images/dishes/tiramisu.jpg", wantOK: true},
		{name: "Double Cheeseburger Deluxe", want: "/images/dishes/cheeseburger.jpg", wantOK: true},
		{name: "Wood-fired pizza", want: "/images/dishes/pizza.jpg", wantOK: true},
		{name: "carbonara", want: "/images/dishes/spaghetti-carbonara.jpg", wantOK: true},
		{name: "pho", want: "/images/dishes/pho.jpg", wantOK: true},
		{name: "ice", wantOK: false},
		{name: "Beef Wellington", wantOK: false},
		{name: "", wantOK: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := resolver.Resolve(tc.name)
			if ok != tc.wantOK || got != tc.want {
				t.Fatalf("Resolve(%q) = %q, %v; want %q, %v", tc.name, got, ok, tc.want, tc.wantOK)
			}
		})
	}
}

func TestImageResolverCustomTable(t *testing.T) {
	resolver := NewImageResolver(map[string]string{"Dumplings": "cdn://dumplings.png", "": "skip", "empty": ""})
	if got, ok := resolver.Resolve("pork dumplings"); !ok || got != "cdn://dumplings.png" {
		t.Fatalf("unexpected resolution %q %v", got, ok)
	}
	if _, ok := resolver.Resolve("empty"); ok {
		t.Fatal("entries without a reference must be ignored")
	}
}
