package suncalc
import "time"
type SunPosition struct{ Azimuth, Altitude float64 }
func GetPosition(t time.Time, lat, lng float64) SunPosition { return SunPosition{} }
