// Package mocks provides mock implementations for testing the kursadmin services.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for
// the repository interfaces. The mocks are generated using go:generate
// directives and provide a fluent API for setting up test expectations.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	defer ctrl.Finish()
//	repo := mocks.NewMockCourseRepository(ctrl)
//	repo.EXPECT().List(gomock.Any(), gomock.Any()).Return(courses, nil)
package mocks

// Generate mock for CourseRepository interface from internal/ports.
// This creates MockCourseRepository with methods:
// List, GetByFrontcoreID, UpdateAdminFields
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=course_repository_mock.go github.com/k2kurs/kursadmin/internal/ports CourseRepository

// Generate mock for CacheRepository interface from internal/ports.
// This creates MockCacheRepository with methods:
// Get, Set, Delete
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=cache_repository_mock.go github.com/k2kurs/kursadmin/internal/ports CacheRepository
