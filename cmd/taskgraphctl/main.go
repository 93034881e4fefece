// Command taskgraphctl is a thin front-end over the Dependency Manager
// façade: it loads a task descriptor file, runs analyze/plan/optimize/
// validate against it, and prints the result.
package main

func main() {
	Execute()
}
