package utils

import "github.com/x448/float16"

// HalfRound returns f as it reads back after a trip through binary16.
func HalfRound(f float32) float32 {
	return float16.Fromfloat32(f).Float32()
}

func HalfRound3(v [3]float32) [3]float32 {
	return [3]float32{HalfRound(v[0]), HalfRound(v[1]), HalfRound(v[2])}
}
