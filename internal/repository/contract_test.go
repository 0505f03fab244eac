package repository_test

import (
	"github.com/itscarlsmith/ClassCal-v2-sub001/internal/notify"
	"github.com/itscarlsmith/ClassCal-v2-sub001/internal/repository"
	"github.com/itscarlsmith/ClassCal-v2-sub001/internal/service"
)

// The repositories delegate pool access through the shared base repository;
// these assertions pin the collaborator contracts the engine and the
// notifier consume them through.
var (
	_ service.RuleSource  = (*repository.RuleRepository)(nil)
	_ service.LessonStore = (*repository.LessonRepository)(nil)
	_ service.UserSource  = (*repository.UserRepository)(nil)
	_ notify.ChatResolver = (*repository.UserRepository)(nil)
)
