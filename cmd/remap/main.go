// Command remap compiles and runs remap programs against a JSON
// event, matching the package layout of hivekit's cmd/hivectl: one
// file per subcommand, a package-level rootCmd wired up in init().
package main

func main() {
	execute()
}
