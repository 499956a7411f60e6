package config

type WorkerKeyStruct struct {
	// StudentsChangedChannel is the Redis PubSub channel announcing that stored students changed.
	StudentsChangedChannel string
}

var WorkerKey = &WorkerKeyStruct{
	StudentsChangedChannel: "students:changed",
}
