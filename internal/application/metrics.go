package application

import "expvar"

var (
	usersCreated       = expvar.NewInt("users_created_total")
	passwordsGenerated = expvar.NewInt("passwords_generated_total")
)
