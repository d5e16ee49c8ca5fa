package format

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// ByteUnits is the binary unit ladder used by Bytes.
var ByteUnits = []string{"Bytes", "KB", "MB", "GB", "TB", "PB", "EB", "ZB", "YB"}

const kibi = 1024

// GiB is the number of bytes in one gibibyte. The API reports memory in GiB.
const GiB = kibi * kibi * kibi

// Scale reduces a byte count to the largest unit in which the value is still >= 1.
// Values that exceed the top unit stay in YB. Values below one byte stay in Bytes.
func Scale(bytes float64) (float64, string) {
	v := math.Abs(bytes)
	i := 0
	for v >= kibi && i < len(ByteUnits)-1 {
		v /= kibi
		i++
	}
	if bytes < 0 {
		v = -v
	}
	return v, ByteUnits[i]
}

// Bytes formats a byte count, e.g. Bytes(1536, 2) == "1.5 KB".
// Trailing zeros are dropped after rounding and zero is "0 Bytes".
func Bytes(bytes float64, decimals int) string {
	if bytes == 0 || math.IsNaN(bytes) {
		return "0 Bytes"
	}
	if decimals < 0 {
		decimals = 0
	}
	v, unit := Scale(bytes)
	return trimFloat(v, decimals) + " " + unit
}

// Memory formats a GiB value the way the table shows it.
func Memory(gib float64) string {
	return Bytes(gib*GiB, 1)
}

// MemoryPair formats used/total memory, e.g. "12 GB / 80 GB".
func MemoryPair(usedGiB, totalGiB float64) string {
	return Memory(usedGiB) + " / " + Memory(totalGiB)
}

// Percentage formats a percentage with a fixed number of decimals.
func Percentage(value float64, decimals int) string {
	if decimals < 0 {
		decimals = 0
	}
	return strconv.FormatFloat(value, 'f', decimals, 64) + "%"
}

// Temperature formats a Celsius value with one decimal.
func Temperature(celsius float64) string {
	return strconv.FormatFloat(celsius, 'f', 1, 64) + "°C"
}

// Power formats a wattage with one decimal.
func Power(watts float64) string {
	return strconv.FormatFloat(watts, 'f', 1, 64) + "W"
}

// PowerPair formats draw against the enforced limit, e.g. "250.0W / 300.0W".
func PowerPair(draw, limit float64) string {
	return Power(draw) + " / " + Power(limit)
}

// TimestampLayout mirrors the en-US numeric date-time the web dashboard used.
const TimestampLayout = "01/02/2006, 15:04:05"

// Timestamp formats t in local time. The zero time formats as "-".
func Timestamp(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(TimestampLayout)
}

// RelativeTime reports how long ago t was, using the single largest non-zero
// unit among days, hours, minutes and seconds.
func RelativeTime(t, now time.Time) string {
	if t.IsZero() {
		return "-"
	}
	d := now.Sub(t)
	if d < time.Second {
		return "just now"
	}

	days := int64(d / (24 * time.Hour))
	hours := int64(d / time.Hour)
	minutes := int64(d / time.Minute)
	seconds := int64(d / time.Second)

	switch {
	case days > 0:
		return fmt.Sprintf("%dd ago", days)
	case hours > 0:
		return fmt.Sprintf("%dh ago", hours)
	case minutes > 0:
		return fmt.Sprintf("%dm ago", minutes)
	default:
		return fmt.Sprintf("%ds ago", seconds)
	}
}

// trimFloat rounds to decimals places and drops trailing zeros.
func trimFloat(v float64, decimals int) string {
	rounded, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', decimals, 64), 64)
	if err != nil {
		return strconv.FormatFloat(v, 'f', decimals, 64)
	}
	return strconv.FormatFloat(rounded, 'f', -1, 64)
}
