package handler

import (
	"marketplace/internal/usecase"
)

var (
	authHandler   *AuthHandler
	userHandler   *UserHandler
	itemHandler   *ItemHandler
	reviewHandler *ReviewHandler
	healthHandler *HealthHandler
)

func Setup(
	authUseCase *usecase.AuthUseCase,
	userUseCase *usecase.UserUseCase,
	itemUseCase *usecase.ItemUseCase,
	reviewUseCase *usecase.ReviewUseCase,
	cookieSecure bool,
	storageDriver string,
) {
	authHandler = NewAuthHandler(authUseCase, cookieSecure)
	userHandler = NewUserHandler(userUseCase, reviewUseCase)
	itemHandler = NewItemHandler(itemUseCase, reviewUseCase)
	reviewHandler = NewReviewHandler(reviewUseCase)
	healthHandler = NewHealthHandler(storageDriver)
}

func GetAuthHandler() *AuthHandler {
	return authHandler
}

func GetUserHandler() *UserHandler {
	return userHandler
}

func GetItemHandler() *ItemHandler {
	return itemHandler
}

func GetReviewHandler() *ReviewHandler {
	return reviewHandler
}

func GetHealthHandler() *HealthHandler {
	return healthHandler
}
