package anyfunc

func helper() {}

func caller() {
	helper() // want "forbidden function call"
}

func other() {
	helper()
}
