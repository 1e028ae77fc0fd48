package geo

import (
	"math"
	"testing"
)

func TestDecode_WKT(t *testing.T) {
	got := Decode("POINT(76.614 8.891)")
	if got.Lng != 76.614 || got.Lat != 8.891 {
		t.Errorf("Decode(WKT) = %+v, want lat=8.891 lng=76.614", got)
	}
}

func TestDecode_WKTWithSpacing(t *testing.T) {
	got := Decode("point ( 76.614  8.891 )")
	if got.Lng != 76.614 || got.Lat != 8.891 {
		t.Errorf("Decode(spaced WKT) = %+v, want lat=8.891 lng=76.614", got)
	}
}

func TestDecode_WKBHex(t *testing.T) {
	// PostGIS EWKB for POINT(76.614 8.891), SRID 4326
	const wkb = "0101000020E61000009EEFA7C64B275340D578E92631C82140"
	got := Decode(wkb)
	if math.Abs(got.Lng-76.614) > 1e-9 || math.Abs(got.Lat-8.891) > 1e-9 {
		t.Errorf("Decode(WKB) = %+v, want lat=8.891 lng=76.614", got)
	}
}

func TestDecode_CoordinatesObject(t *testing.T) {
	got := Decode(map[string]interface{}{
		"type":        "Point",
		"coordinates": []interface{}{76.614, 8.891},
	})
	if got.Lng != 76.614 || got.Lat != 8.891 {
		t.Errorf("Decode(coordinates object) = %+v, want lat=8.891 lng=76.614", got)
	}
}

func TestDecode_XYObject(t *testing.T) {
	got := Decode(map[string]interface{}{"x": 76.614, "y": 8.891})
	if got.Lng != 76.614 || got.Lat != 8.891 {
		t.Errorf("Decode(x/y object) = %+v, want lat=8.891 lng=76.614", got)
	}
}

func TestDecode_JSONString(t *testing.T) {
	got := Decode(`{"coordinates":[76.614,8.891]}`)
	if got.Lng != 76.614 || got.Lat != 8.891 {
		t.Errorf("Decode(JSON string) = %+v, want lat=8.891 lng=76.614", got)
	}
}

func TestDecode_Sentinel(t *testing.T) {
	cases := []interface{}{
		nil,
		"",
		"not a location",
		"01short",
		"POINT(abc def)",
		map[string]interface{}{"foo": "bar"},
		42,
	}
	for _, c := range cases {
		if got := Decode(c); !got.IsZero() {
			t.Errorf("Decode(%v) = %+v, want zero sentinel", c, got)
		}
	}
}

func TestDecode_NilStringPointer(t *testing.T) {
	var s *string
	if got := Decode(s); !got.IsZero() {
		t.Errorf("Decode(nil *string) = %+v, want zero sentinel", got)
	}
}

func TestHaversineMeters_SamePoint(t *testing.T) {
	if got := HaversineMeters(8.891, 76.614, 8.891, 76.614); got != 0 {
		t.Errorf("HaversineMeters(same point) = %v, want 0", got)
	}
}

func TestHaversineMeters_Symmetric(t *testing.T) {
	ab := HaversineMeters(8.891, 76.614, 12.9716, 77.5946)
	ba := HaversineMeters(12.9716, 77.5946, 8.891, 76.614)
	if math.Abs(ab-ba) > 1e-6 {
		t.Errorf("HaversineMeters not symmetric: %v vs %v", ab, ba)
	}
}

func TestHaversineMeters_KnownDistance(t *testing.T) {
	// Kollam to Bengaluru, roughly 465 km
	got := HaversineMeters(8.891, 76.614, 12.9716, 77.5946)
	if got < 440_000 || got > 490_000 {
		t.Errorf("HaversineMeters(Kollam→Bengaluru) = %.0f m, want ~465 km", got)
	}
}

func TestHaversineMeters_ShortRange(t *testing.T) {
	// ~0.00045 degrees of latitude is ~50 m
	got := HaversineMeters(8.891, 76.614, 8.89145, 76.614)
	if got < 45 || got > 55 {
		t.Errorf("HaversineMeters(50 m offset) = %.1f m, want ~50 m", got)
	}
}
