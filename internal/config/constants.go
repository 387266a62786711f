package config

// DefaultDatabasePath is the default path for the cache database. The task
// queue keeps its own database next to it with a "-tasks" suffix.
const DefaultDatabasePath = "./holonet.db"
