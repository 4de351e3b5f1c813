package config

import (
	"Restore/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const seedPassword = "Pa$$w0rd"

var seedUsers = []struct {
	email string
	role  string
}{
	{"bob@test.com", models.RoleMember},
	{"admin@test.com", models.RoleAdmin},
}

var seedProducts = []models.Product{
	{Name: "Angular Speedster Board 2000", Description: "Lorem ipsum dolor sit amet, consectetuer adipiscing elit.", Price: 20000, PictureURL: "/images/products/sb-ang1.png", Brand: "Angular", Type: "Boards", QuantityInStock: 100},
	{Name: "Green Angular Board 3000", Description: "Nunc viverra imperdiet enim. Fusce est. Vivamus a tellus.", Price: 15000, PictureURL: "/images/products/sb-ang2.png", Brand: "Angular", Type: "Boards", QuantityInStock: 100},
	{Name: "Core Board Speed Rush 3", Description: "Suspendisse dui purus, scelerisque at, vulputate vitae, pretium mattis, nunc.", Price: 18000, PictureURL: "/images/products/sb-core1.png", Brand: "NetCore", Type: "Boards", QuantityInStock: 100},
	{Name: "Net Core Super Board", Description: "Pellentesque habitant morbi tristique senectus et netus et malesuada fames.", Price: 30000, PictureURL: "/images/products/sb-core2.png", Brand: "NetCore", Type: "Boards", QuantityInStock: 100},
	{Name: "React Board Super Whizzy Fast", Description: "Aenean nec lorem. In porttitor. Donec laoreet nonummy augue.", Price: 25000, PictureURL: "/images/products/sb-react1.png", Brand: "React", Type: "Boards", QuantityInStock: 100},
	{Name: "Typescript Entry Board", Description: "Suspendisse potenti. Sed egestas, ante et vulputate volutpat.", Price: 12000, PictureURL: "/images/products/sb-ts1.png", Brand: "TypeScript", Type: "Boards", QuantityInStock: 100},
	{Name: "Core Blue Hat", Description: "Fusce posuere, magna sed pulvinar ultricies, purus lectus malesuada libero.", Price: 1000, PictureURL: "/images/products/hat-core1.png", Brand: "NetCore", Type: "Hats", QuantityInStock: 100},
	{Name: "Green React Woolen Hat", Description: "Sit amet commodo magna eros quis urna.", Price: 8000, PictureURL: "/images/products/hat-react1.png", Brand: "React", Type: "Hats", QuantityInStock: 100},
	{Name: "Purple React Woolen Hat", Description: "Nunc viverra imperdiet enim. Fusce est.", Price: 1500, PictureURL: "/images/products/hat-react2.png", Brand: "React", Type: "Hats", QuantityInStock: 100},
	{Name: "Blue Code Gloves", Description: "Aliquam erat volutpat. Nam dui mi, tincidunt quis, accumsan porttitor.", Price: 1800, PictureURL: "/images/products/glove-code1.png", Brand: "VS Code", Type: "Gloves", QuantityInStock: 100},
	{Name: "Green Code Gloves", Description: "Mauris eget neque at sem venenatis eleifend.", Price: 1500, PictureURL: "/images/products/glove-code2.png", Brand: "VS Code", Type: "Gloves", QuantityInStock: 100},
	{Name: "Purple React Gloves", Description: "Ut nonummy. Fusce aliquet pede non pede.", Price: 1600, PictureURL: "/images/products/glove-react1.png", Brand: "React", Type: "Gloves", QuantityInStock: 100},
	{Name: "Green React Gloves", Description: "Suspendisse dapibus lorem pellentesque magna.", Price: 1400, PictureURL: "/images/products/glove-react2.png", Brand: "React", Type: "Gloves", QuantityInStock: 100},
	{Name: "Redis Red Boots", Description: "Integer in mauris eu nibh euismod gravida.", Price: 25000, PictureURL: "/images/products/boot-redis1.png", Brand: "Redis", Type: "Boots", QuantityInStock: 100},
	{Name: "Core Red Boots", Description: "Duis ac tellus et risus vulputate vehicula.", Price: 18999, PictureURL: "/images/products/boot-core2.png", Brand: "NetCore", Type: "Boots", QuantityInStock: 100},
	{Name: "Core Purple Boots", Description: "Donec vitae orci sed dolor rutrum auctor.", Price: 19999, PictureURL: "/images/products/boot-core1.png", Brand: "NetCore", Type: "Boots", QuantityInStock: 100},
	{Name: "Angular Purple Boots", Description: "Aenean massa. Cum sociis natoque penatibus.", Price: 15000, PictureURL: "/images/products/boot-ang2.png", Brand: "Angular", Type: "Boots", QuantityInStock: 100},
	{Name: "Angular Blue Boots", Description: "Curabitur ullamcorper ultricies nisi.", Price: 18000, PictureURL: "/images/products/boot-ang1.png", Brand: "Angular", Type: "Boots", QuantityInStock: 100},
}

// Seed fills empty user and product tables with demo data.
func Seed(db *gorm.DB) error {
	var userCount int64
	if err := db.Model(&models.User{}).Count(&userCount).Error; err != nil {
		return err
	}
	if userCount == 0 {
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(seedPassword), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		for _, u := range seedUsers {
			user := models.User{
				Email:        u.email,
				UserName:     u.email,
				PasswordHash: string(hashedPassword),
				Role:         u.role,
			}
			if err := db.Create(&user).Error; err != nil {
				return err
			}
		}
	}

	var productCount int64
	if err := db.Model(&models.Product{}).Count(&productCount).Error; err != nil {
		return err
	}
	if productCount == 0 {
		products := make([]models.Product, len(seedProducts))
		copy(products, seedProducts)
		if err := db.Create(&products).Error; err != nil {
			return err
		}
	}

	return nil
}
