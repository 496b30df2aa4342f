package main

import "reposcan/internal/ctl"

func main() {
	ctl.Execute()
}
