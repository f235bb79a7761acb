// Composer builds GitLab CI configuration from reusable job collections.
//
// Definitions are rendered to YAML with the render command or served over
// HTTP together with stored compositions with the serve command.
package main

func main() {
	Execute()
}
