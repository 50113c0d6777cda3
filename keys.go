package otpgate

// Redis key layout. The names are a deployed wire format shared with other
// services reading the same keyspace; they must not be prefixed or renamed.
const (
	globalSpamCountKey = "spam_count"
	globalLockKey      = "otp_lock"
)

func otpKey(identity string) string {
	return "otp:" + identity
}

func cooldownKey(identity string) string {
	return "otp_cooldown:" + identity
}

func requestCountKey(identity string) string {
	return "otp_requests:" + identity
}

func spamLockKey(identity string) string {
	return "otp_spam_lock:" + identity
}

func failedAttemptsKey(identity string) string {
	return "otp_attempts:" + identity
}

func verificationLockKey(identity string) string {
	return "otp_lock:" + identity
}
