//go:build tinygo && !debug

package main

func initDebug() {}
