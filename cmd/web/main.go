// @title           SkillBridge API
// @version         1.0
// @description     API маркетплейса курсов и вакансий SkillBridge (документация Swagger).
// @contact.name    SkillBridge
// @contact.email   support@skillbridge.et
// @license.name    MIT
// @license.url     https://opensource.org/licenses/MIT
// @host            localhost:4000
// @BasePath        /api/v1

package main

import "skillbridge_backend/internal/app"

func main() {
	app.Run()
}
