package main

import "github.com/krizmartin/profile-matcher/cmd"

func main() {
	cmd.Execute()
}
