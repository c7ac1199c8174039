package domain

// KeyPrefix namespaces every key feedex writes to Redis.
const KeyPrefix = "feedex:"
