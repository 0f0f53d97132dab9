// Command capbridge runs WebAssembly guests against host capability
// namespaces mounted as virtual directories.
package main

func main() {
	Execute()
}
