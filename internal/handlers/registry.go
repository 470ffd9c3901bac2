package handlers

// AppHandlers содержит все хэндлеры приложения.
type AppHandlers struct {
	AuthHandler     *AuthHandler
	ProfileHandler  *ProfileHandler
	CourseHandler   *CourseHandler
	PurchaseHandler *PurchaseHandler
	JobHandler      *JobHandler
	AdminHandler    *AdminHandler
	FileHandler     *FileHandler
}
