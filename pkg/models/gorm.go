package models

func ModelsToAutoMigrate() []interface{} {
	return []interface{}{
		&SearchServer{},
		&Subscription{},
	}
}
