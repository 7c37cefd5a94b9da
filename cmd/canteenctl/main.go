package main

import "github.com/Apurer/campus-canteen/internal/app/ctl"

func main() {
	ctl.Execute()
}
