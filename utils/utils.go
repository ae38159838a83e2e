package utils

func Ptr[T any](v T) *T {
	return &v
}

func Contains[T comparable](items []T, target T) bool {
	for _, item := range items {
		if item == target {
			return true
		}
	}
	return false
}
