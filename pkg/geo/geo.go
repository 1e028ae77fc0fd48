// Package geo normalizes household anchor locations and computes
// great-circle distances for proximity checks.
//
// Anchor locations arrive in whatever shape the writer produced: WKT
// POINT strings, hex-encoded WKB blobs from PostGIS, GeoJSON-style
// objects with a coordinates pair, or plain x/y objects. Decode folds
// all of them into a lat/lng Point.
package geo

import (
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// EarthRadiusM is the mean radius of Earth in meters.
const EarthRadiusM = 6_371_000.0

// Point is a WGS-84 coordinate pair.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// IsZero reports whether the point is the (0,0) no-location sentinel.
// Decode returns the zero point for anything it cannot parse; callers
// must check this before feeding the point into distance math.
func (p Point) IsZero() bool {
	return p.Lat == 0 && p.Lng == 0
}

var wktPointRe = regexp.MustCompile(`(?i)POINT\s*\(\s*([\d.-]+)\s+([\d.-]+)\s*\)`)

// Decode normalizes a stored location value into a Point. It accepts:
//
//   - a WKT string: "POINT(lng lat)"
//   - a hex WKB blob: "01..." with little-endian doubles at byte
//     offsets 18–33 (lng) and 34–49 (lat)
//   - an object with a [lng, lat] "coordinates" pair
//   - an object with "x"/"y" fields (x = lng, y = lat)
//
// Anything else yields the zero Point. Decode never fails; the zero
// Point is the "no valid location" sentinel.
func Decode(raw interface{}) Point {
	switch v := raw.(type) {
	case nil:
		return Point{}
	case string:
		return decodeString(v)
	case *string:
		if v == nil {
			return Point{}
		}
		return decodeString(*v)
	case map[string]interface{}:
		return decodeObject(v)
	case Point:
		return v
	}
	return Point{}
}

func decodeString(s string) Point {
	s = strings.TrimSpace(s)
	if s == "" {
		return Point{}
	}

	if m := wktPointRe.FindStringSubmatch(s); m != nil {
		lng, err1 := strconv.ParseFloat(m[1], 64)
		lat, err2 := strconv.ParseFloat(m[2], 64)
		if err1 != nil || err2 != nil {
			return Point{}
		}
		return Point{Lat: lat, Lng: lng}
	}

	// Hex WKB: EWKB point with SRID as produced by PostGIS. The
	// doubles sit at fixed hex offsets for this one geometry type.
	if strings.HasPrefix(s, "01") && len(s) >= 50 {
		lng, ok1 := hexToFloat64(s[18:34])
		lat, ok2 := hexToFloat64(s[34:50])
		if ok1 && ok2 {
			return Point{Lat: lat, Lng: lng}
		}
		return Point{}
	}

	// Some writers store the GeoJSON-ish object as a JSON string.
	if strings.HasPrefix(s, "{") {
		var obj map[string]interface{}
		if err := json.Unmarshal([]byte(s), &obj); err == nil {
			return decodeObject(obj)
		}
	}

	return Point{}
}

func decodeObject(obj map[string]interface{}) Point {
	if coords, ok := obj["coordinates"].([]interface{}); ok && len(coords) >= 2 {
		lng, ok1 := toFloat(coords[0])
		lat, ok2 := toFloat(coords[1])
		if ok1 && ok2 {
			return Point{Lat: lat, Lng: lng}
		}
		return Point{}
	}
	if x, ok := obj["x"]; ok {
		lng, ok1 := toFloat(x)
		lat, ok2 := toFloat(obj["y"])
		if ok1 && ok2 {
			return Point{Lat: lat, Lng: lng}
		}
	}
	return Point{}
}

func hexToFloat64(h string) (float64, bool) {
	b, err := hex.DecodeString(h)
	if err != nil || len(b) != 8 {
		return 0, false
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(b)), true
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

// HaversineMeters returns the great-circle distance in meters between
// two coordinates. Symmetric, zero for identical points. Inputs are
// not range-checked.
func HaversineMeters(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := degToRad(lat2 - lat1)
	dLng := degToRad(lng2 - lng1)

	sinLat := math.Sin(dLat / 2)
	sinLng := math.Sin(dLng / 2)

	a := sinLat*sinLat +
		math.Cos(degToRad(lat1))*math.Cos(degToRad(lat2))*sinLng*sinLng

	return EarthRadiusM * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

func degToRad(deg float64) float64 {
	return deg * (math.Pi / 180.0)
}
