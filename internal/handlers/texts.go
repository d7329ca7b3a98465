package handlers

// User-facing texts. The bot speaks Uzbek regardless of the chosen language.
const (
	textWelcome = "🏡 Assalomu Aleykum!\n" +
		"🤖 UyizlangBotga Hush kelibsiz!\n\n" +
		"Maklersiz 🧾 oson uy toping va soting 🏠\n" +
		"Bizning maqsad - sizga ishonchli, tez va qulay uy savdosini ta'minlash 💪\n\n" +
		"⚠️ Ogohlantirish:\n" +
		"Sizning tajribangiz alohida e'tiborga olinadi!\n\n" +
		"📄 1. Hujjatlarni tekshiring:\n" +
		"• 📋 Kadastr hujjati mavjudligi\n" +
		"• 🆔 Pasportni tekshirish  \n" +
		"• 📝 Yozma shartnoma\n\n" +
		"💰 2. To'lov masalasida ehtiyot bo'ling:\n" +
		"• 👤 Noma'lum shaxslarga pul bermang\n" +
		"• 🏦 Bank orqali to'lov\n" +
		"• 🧾 Kvitansiyani saqlang\n\n" +
		"🏠 3. Uy joylashuvini tekshirish:\n" +
		"• 🗺️ Manzilni tekshirish\n" +
		"• 👥 Qo'shnilar bilan suhbat\n\n" +
		"🤝 4. Ishonchli bitim tuzing:\n" +
		"• 📄 Yozma shartnoma\n" +
		"• ⚖️ Huquqshunos bilan maslahat\n\n" +
		"💡 Eslatma:\n" +
		"Bot faqat aloqa va e'lon joylashtirish imkonini beradi.\n" +
		"Bitim javobgarligi foydalanuvchida.\n\n" +
		"✨ Barokatlik Savdo Tilaymiz!\n\n" +
		"🌐 Iltimos, tilni tanlang:"

	textAskLanguage   = "🌐 Iltimos, tilni tanlang:"
	textAskPhone      = "📞 Telefon raqamingizni yuboring:"
	btnSendPhone      = "📞 Telefon raqamni yuborish"
	textAskLocation   = "📍 Joylashuvingizni yuboring:"
	btnSendLocation   = "📍 Joylashuvni yuborish"
	textRegistered    = "🎉 Ro'yxatdan muvaffaqiyatli o'tdingiz!\n\n🏡 Asosiy menyu:"
	textRegisterFirst = "ℹ️ Avval ro'yxatdan o'ting: /start ni bosing."

	textMainMenu = "🏡 Asosiy menyu:\n\n" +
		"• 🏠 Elon Berish - Yangi e'lon joylashtirish\n" +
		"• 📋 Mening elonlarim - Sizning barcha e'lonlaringiz\n" +
		"• 🔍 Qidiruv - Uylarni qidirish\n" +
		"• 🆘 Qo'llab-quvvatlash - Yordam va admin bilan aloqa"

	BtnNewListing = "🏠 Elon Berish"
	BtnMyListings = "📋 Mening elonlarim"
	BtnSearch     = "🔍 Qidiruv"
	BtnSupport    = "🆘 Qo'llab-quvvatlash"

	textAskTitle       = "Elon berish\n\nSarlavha Qisqacha\nMasalan Olmazor tumanida Kvartira yoki Xovli Sotiladi..?"
	textAskRooms       = "Xonalar soni kiriting\n1dan 10tagacha"
	textAskFloor       = "🏠 Xonadon Joylash qavat\n1dan 22gacha"
	textAskTotalFloors = "🏢 Jami qavatlar 1dan 22gacha"
	textAskPrice       = "💰 Narxni kiriting:\n\nℹ️ Faqat raqamlarda kiriting"
	textNumbersOnly    = "❌ Iltimos, faqat raqamlarda kiriting!"
	textAskCurrency    = "💵 Valyutani tanlang: USD SO'M"
	textAskImages      = "🖼️ Rasm yuklang (maksimum 6 ta)\n\n" +
		"ℹ️ Bir nechta rasm yuklash uchun bir vaqtning o'zida bir nechtasini tanlang"
	textImageAdded       = "✅ Rasm qo'shildi. Yana %d ta rasm yuklashingiz mumkin."
	textImagesDone       = "✅ Barcha %d ta rasm muvaffaqiyatli yuklandi!"
	textPhotoOnly        = "❌ Iltimos, rasm yuboring!"
	textAskListingPlace  = "📍 E'lon joylashuvini yuboring:"
	btnConfirm           = "✅ Tasdiqlash"
	btnCancel            = "❌ Bekor qilish"
	textListingCancelled = "❌ E'lon bekor qilindi."
	textSaveFailed       = "❌ E'lonni saqlab bo'lmadi. Qayta urinish uchun ✅ Tasdiqlash tugmasini bosing."

	textExpiryWarning = "⚠️ Ogohlantirish:\n\n" +
		"E'loningiz 30 kundan keyin avtomatik ravishda nofaol holatga o'tadi"

	textListingPublished = "🎉 E'loningiz muvaffaqiyatli joylashtirildi!\n\n" +
		textExpiryWarning + "\n\n" +
		"📋 E'loningizni 'Mening elonlarim' bo'limida ko'rishingiz mumkin!"

	textSiteLink = "🔍 Barcha e'lonlarni ko'rish uchun web sahifamizga kiring:\nhttp://uyizlang.uz/"

	textMyListingsHeader = "📋 Sizning e'lonlaringiz (%d ta):"
	textNoListings       = "📭 Sizda hali e'lonlar mavjud emas."
	textMoreImages       = "🖼️ ...va yana %d ta rasm"
	textGenericError     = "❌ Xatolik yuz berdi. Iltimos, qayta urinib ko'ring."
	textMyListingsFooter = textSiteLink + "\n\n🏡 Asosiy menyuga qaytish uchun /start ni bosing"

	TextRateLimited = "🚫 Juda ko'p so'rov! Iltimos, biroz kuting."
	TextTechError   = "❌ Texnik xatolik. Iltimos, keyinroq urinib ko'ring."

	TextNotAdmin = "❌ Siz admin emassiz!"
	textStats    = "📊 Bot Statistikasi:\n\n" +
		"👥 Jami foydalanuvchilar: %d\n" +
		"🏠 Jami e'lonlar: %d\n" +
		"✅ Faol e'lonlar: %d"

	textUnknown  = "🤖 Tushunarsiz buyruq. Asosiy menyu uchun /start ni bosing."
	textNoFiles  = "📎 Fayllar qabul qilinmaydi. Rasmlarni oddiy rasm sifatida yuboring."
	textNoValue  = "-"
	dateLayout   = "02.01.2006"
	statusActive = "Aktiv"
	statusPaused = "Nofaol"
)

var (
	languageButtons = []string{"UZ 🇺🇿", "RU 🇷🇺", "EN 🇺🇸"}
	currencyButtons = []string{"USD", "SO'M"}
)
