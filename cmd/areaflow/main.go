// Command areaflow serves, checks and renders areas.
package main

func main() {
	Execute()
}
